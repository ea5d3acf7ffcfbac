package backend

import (
	"context"
	"log"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/solanahub/solblaze-detox/config"
	"github.com/solanahub/solblaze-detox/utils"
)

type Backend struct {
	logger     *log.Logger
	rpcClient  *rpc.Client
	ctx        context.Context
	rpc        string
	commitment rpc.CommitmentType
}

func NewBackend(ctx context.Context, node *config.Node) *Backend {
	backend := &Backend{
		rpcClient:  rpc.New(node.Rpc),
		ctx:        ctx,
		rpc:        node.Rpc,
		logger:     utils.NewLog(config.LogPath, config.NetworkLog),
		commitment: rpc.CommitmentConfirmed,
	}
	return backend
}

func (backend *Backend) Rpc() string {
	return backend.rpc
}

func (backend *Backend) Start() {
	backend.logger.Printf("start backend, rpc: %s......", backend.rpc)
}

func (backend *Backend) Stop() {
	backend.logger.Printf("backend has stopped......")
}
