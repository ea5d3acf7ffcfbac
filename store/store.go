package store

import (
	"log"
	"sync"
)

// Ledger persists pool refresh records.
type Ledger interface {
	SavePoolRefresh(refresh *PoolRefresh) error
	SelectPoolRefresh(signature string) ([]*PoolRefresh, error)
}

// Store writes records off the request path. A nil *Store drops everything.
// Records queued before Stop are always written.
type Store struct {
	wg          sync.WaitGroup
	stopOnce    sync.Once
	quit        chan struct{}
	logger      *log.Logger
	refreshChan chan *PoolRefresh
	ledger      Ledger
}

func NewStore(ledger Ledger, logger *log.Logger) *Store {
	return &Store{
		quit:        make(chan struct{}),
		logger:      logger,
		refreshChan: make(chan *PoolRefresh, 32),
		ledger:      ledger,
	}
}

func (s *Store) Start() {
	if s == nil {
		return
	}
	s.wg.Add(1)
	go s.store()
}

// Stop flushes the queue and waits for the writer to exit.
func (s *Store) Stop() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(s.quit)
	})
	s.wg.Wait()
}

func (s *Store) store() {
	defer s.wg.Done()
	for {
		select {
		case refresh := <-s.refreshChan:
			s.save(refresh)
		case <-s.quit:
			for {
				select {
				case refresh := <-s.refreshChan:
					s.save(refresh)
				default:
					return
				}
			}
		}
	}
}

func (s *Store) save(refresh *PoolRefresh) {
	if err := s.ledger.SavePoolRefresh(refresh); err != nil {
		s.logger.Printf("save pool refresh %s err: %v", refresh.Signature, err)
	}
}

func (s *Store) StorePoolRefresh(refresh *PoolRefresh) {
	if s == nil {
		return
	}
	select {
	case s.refreshChan <- refresh:
	default:
		s.logger.Printf("store queue is full, drop pool refresh %s", refresh.Signature)
	}
}

func (s *Store) GetPoolRefresh(signature string) ([]*PoolRefresh, error) {
	if s == nil {
		return nil, nil
	}
	return s.ledger.SelectPoolRefresh(signature)
}
