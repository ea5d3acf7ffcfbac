package store

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/solanahub/solblaze-detox/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLedger struct {
	mu      sync.Mutex
	records []*PoolRefresh
	fail    bool
}

func (l *memLedger) SavePoolRefresh(refresh *PoolRefresh) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail {
		return errors.New("db down")
	}
	l.records = append(l.records, refresh)
	return nil
}

func (l *memLedger) SelectPoolRefresh(signature string) ([]*PoolRefresh, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	found := make([]*PoolRefresh, 0)
	for _, record := range l.records {
		if record.Signature == signature {
			found = append(found, record)
		}
	}
	return found, nil
}

func TestStore_WritesQueuedRecords(t *testing.T) {
	ledger := &memLedger{}
	s := NewStore(ledger, utils.StdLog("store-test"))
	s.StorePoolRefresh(&PoolRefresh{Signature: "sig1", Status: StatusPending})
	s.StorePoolRefresh(&PoolRefresh{Signature: "sig1", Status: StatusSucceeded})
	s.StorePoolRefresh(&PoolRefresh{Signature: "sig2", Status: StatusFailed})
	s.Start()
	s.Stop()

	records, err := s.GetPoolRefresh("sig1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, StatusPending, records[0].Status)
	assert.Equal(t, StatusSucceeded, records[1].Status)
}

func TestStore_RecordQueuedLateBeforeStopIsWritten(t *testing.T) {
	ledger := &memLedger{}
	s := NewStore(ledger, utils.StdLog("store-test"))
	s.Start()

	// a refresh that finishes while the service is already shutting down
	time.Sleep(20 * time.Millisecond)
	s.StorePoolRefresh(&PoolRefresh{Signature: "late", Status: StatusFailed})
	s.Stop()

	records, err := s.GetPoolRefresh("late")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatusFailed, records[0].Status)
}

func TestStore_StopTwice(t *testing.T) {
	s := NewStore(&memLedger{}, utils.StdLog("store-test"))
	s.Start()
	s.Stop()
	assert.NotPanics(t, s.Stop)
}

func TestStore_SaveFailureIsLogged(t *testing.T) {
	s := NewStore(&memLedger{fail: true}, utils.StdLog("store-test"))
	s.StorePoolRefresh(&PoolRefresh{Signature: "sig"})
	s.Start()
	s.Stop()

	records, err := s.GetPoolRefresh("sig")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_Nil(t *testing.T) {
	var s *Store
	s.Start()
	s.StorePoolRefresh(&PoolRefresh{Signature: "sig"})
	records, err := s.GetPoolRefresh("sig")
	assert.NoError(t, err)
	assert.Nil(t, records)
	s.Stop()
}

func TestTruncateError(t *testing.T) {
	assert.Equal(t, "rpc down", TruncateError("rpc down"))

	long := "Get \"https://stake.solblaze.org/api/v1/" + strings.Repeat("é", 400) + "\": dial tcp: i/o timeout"
	truncated := TruncateError(long)
	assert.Equal(t, ErrorSize, utf8.RuneCountInString(truncated))
	assert.True(t, utf8.ValidString(truncated))
	assert.True(t, strings.HasPrefix(long, truncated))
}
