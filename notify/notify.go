package notify

import (
	"log"
	"sync"

	"github.com/containrrr/shoutrrr"
	"github.com/containrrr/shoutrrr/pkg/router"
)

type Sender interface {
	Send(message string) error
}

type shoutrrrSender struct {
	router *router.ServiceRouter
}

func (s *shoutrrrSender) Send(message string) error {
	for _, err := range s.router.Send(message, nil) {
		if err != nil {
			return err
		}
	}
	return nil
}

// Notify delivers alert messages asynchronously so callers on the request
// path never wait for a chat service. Messages committed before Stop are
// delivered.
type Notify struct {
	wg       sync.WaitGroup
	stopOnce sync.Once
	quit     chan struct{}
	logger   *log.Logger
	senders  []Sender
	data     chan string
}

// NewNotify builds shoutrrr senders from urls; extra senders are appended as is.
func NewNotify(urls []string, logger *log.Logger, extra ...Sender) *Notify {
	senders := make([]Sender, 0, len(urls)+len(extra))
	for _, url := range urls {
		sender, err := shoutrrr.CreateSender(url)
		if err != nil {
			logger.Printf("create shoutrrr sender err: %v", err)
			continue
		}
		senders = append(senders, &shoutrrrSender{router: sender})
	}
	senders = append(senders, extra...)
	return NewNotifyWithSenders(senders, logger)
}

func NewNotifyWithSenders(senders []Sender, logger *log.Logger) *Notify {
	return &Notify{
		quit:    make(chan struct{}),
		logger:  logger,
		senders: senders,
		data:    make(chan string, 32),
	}
}

func (notify *Notify) Enabled() bool {
	return notify != nil && len(notify.senders) > 0
}

func (notify *Notify) Start() {
	if !notify.Enabled() {
		return
	}
	notify.wg.Add(1)
	go notify.listen()
}

func (notify *Notify) Stop() {
	if !notify.Enabled() {
		return
	}
	notify.stopOnce.Do(func() {
		close(notify.quit)
	})
	notify.wg.Wait()
}

// Commit queues message; it is dropped when the queue is full.
func (notify *Notify) Commit(message string) {
	if !notify.Enabled() {
		return
	}
	select {
	case notify.data <- message:
	default:
		notify.logger.Printf("notify queue is full, drop: %s", message)
	}
}

func (notify *Notify) listen() {
	defer notify.wg.Done()
	for {
		select {
		case message := <-notify.data:
			notify.send(message)
		case <-notify.quit:
			for {
				select {
				case message := <-notify.data:
					notify.send(message)
				default:
					return
				}
			}
		}
	}
}

func (notify *Notify) send(message string) {
	for _, sender := range notify.senders {
		if err := sender.Send(message); err != nil {
			notify.logger.Printf("send notification err: %v", err)
		}
	}
}
