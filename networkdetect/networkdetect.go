package networkdetect

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/go-ping/ping"
	"github.com/solanahub/solblaze-detox/config"
)

// Pinger reports the average round trip to host.
type Pinger func(host string) (time.Duration, error)

type NetworkDetector struct {
	logger *log.Logger
	ping   Pinger
}

func NewNetworkDetector(logger *log.Logger) *NetworkDetector {
	return NewNetworkDetectorWithPinger(logger, PingHost)
}

func NewNetworkDetectorWithPinger(logger *log.Logger, pinger Pinger) *NetworkDetector {
	return &NetworkDetector{
		logger: logger,
		ping:   pinger,
	}
}

// Host extracts the host name of an rpc endpoint, dropping scheme and port.
func Host(rpc string) (string, error) {
	u, err := url.Parse(rpc)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("rpc %s has no host", rpc)
	}
	return u.Hostname(), nil
}

func PingHost(host string) (time.Duration, error) {
	pinger, err := ping.NewPinger(host)
	if err != nil {
		return 0, err
	}
	pinger.Count = 3
	pinger.Timeout = 5 * time.Second
	if err := pinger.Run(); err != nil { // blocks until finished
		return 0, err
	}
	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return 0, fmt.Errorf("no reply from %s", host)
	}
	return stats.AvgRtt, nil
}

// Fastest returns the node with the lowest round trip. Unreachable nodes are
// skipped; when none answers the first node is kept.
func (nd *NetworkDetector) Fastest(nodes []*config.Node) *config.Node {
	if len(nodes) == 0 {
		return nil
	}
	fastest := nodes[0]
	minRtt := time.Duration(-1)
	for _, node := range nodes {
		host, err := Host(node.Rpc)
		if err != nil {
			nd.logger.Printf("node %s err: %v", node.Rpc, err)
			continue
		}
		rtt, err := nd.ping(host)
		if err != nil {
			nd.logger.Printf("ping %s err: %v", host, err)
			continue
		}
		nd.logger.Printf("ping %s rtt: %d ms", host, rtt.Milliseconds())
		if minRtt < 0 || rtt < minRtt {
			minRtt = rtt
			fastest = node
		}
	}
	nd.logger.Printf("use node %s", fastest.Rpc)
	return fastest
}
