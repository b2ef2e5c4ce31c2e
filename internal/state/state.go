// Copyright 2023 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package state

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/dgraph-io/badger/v4"

	"github.com/blinklabs-io/fpowd/internal/config"
	"github.com/blinklabs-io/fpowd/internal/logging"
)

const (
	verdictKeyPrefix = "verdict_"

	gcInterval     = 5 * time.Minute
	gcDiscardRatio = 0.5
)

var ErrNotLoaded = errors.New("state not loaded")

// Verdict is the stored outcome of a completed verification
type Verdict struct {
	// This allows the type to be used with cbor.DecodeGeneric
	cbor.StructAsArray
	Valid    bool
	Reason   string
	Bits     uint32
	Recorded int64
}

type Stats struct {
	Accepted uint64 `json:"accepted"`
	Rejected uint64 `json:"rejected"`
}

type State struct {
	sync.Mutex
	db     *badger.DB
	gcStop chan struct{}
	gcDone chan struct{}
}

var globalState = &State{}

func (s *State) Load() error {
	cfg := config.GetConfig()
	badgerOpts := badger.DefaultOptions(cfg.State.Directory).
		WithLogger(NewBadgerLogger()).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	return s.open(badgerOpts)
}

// LoadInMemory opens a ledger that is discarded on Close
func (s *State) LoadInMemory() error {
	badgerOpts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(NewBadgerLogger()).
		WithLoggingLevel(badger.WARNING)
	return s.open(badgerOpts)
}

func (s *State) open(badgerOpts badger.Options) error {
	s.Lock()
	defer s.Unlock()
	if s.db != nil {
		return errors.New("state already loaded")
	}
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return err
	}
	s.db = db
	if !badgerOpts.InMemory {
		s.gcStop = make(chan struct{})
		s.gcDone = make(chan struct{})
		go gcLoop(db, s.gcStop, s.gcDone)
	}
	return nil
}

func gcLoop(db *badger.DB, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// Keep collecting until badger reports nothing left to rewrite
			for db.RunValueLogGC(gcDiscardRatio) == nil {
			}
		}
	}
}

func (s *State) Close() error {
	s.Lock()
	defer s.Unlock()
	if s.db == nil {
		return nil
	}
	if s.gcStop != nil {
		close(s.gcStop)
		<-s.gcDone
		s.gcStop = nil
		s.gcDone = nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *State) IsLoaded() bool {
	return s.getDB() != nil
}

func (s *State) getDB() *badger.DB {
	s.Lock()
	defer s.Unlock()
	return s.db
}

func verdictKey(namespace string, digest [32]byte) []byte {
	return fmt.Appendf(
		nil,
		"%s%s_%s",
		verdictKeyPrefix,
		namespace,
		hex.EncodeToString(digest[:]),
	)
}

// RecordVerdict stores the verdict for an envelope digest. Verdicts are kept
// per namespace, so that results produced under different verifier settings
// never answer for each other.
func (s *State) RecordVerdict(
	namespace string,
	digest [32]byte,
	verdict Verdict,
) error {
	db := s.getDB()
	if db == nil {
		return ErrNotLoaded
	}
	if verdict.Recorded == 0 {
		verdict.Recorded = time.Now().Unix()
	}
	val, err := cbor.Encode(&verdict)
	if err != nil {
		return err
	}
	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set(verdictKey(namespace, digest), val)
	})
	return err
}

// LookupVerdict returns the stored verdict, or nil if there is none
func (s *State) LookupVerdict(
	namespace string,
	digest [32]byte,
) (*Verdict, error) {
	db := s.getDB()
	if db == nil {
		return nil, ErrNotLoaded
	}
	var ret *Verdict
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(verdictKey(namespace, digest))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			var tmpVerdict Verdict
			if _, err := cbor.Decode(v, &tmpVerdict); err != nil {
				return err
			}
			ret = &tmpVerdict
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Stats counts the stored verdicts across all namespaces
func (s *State) Stats() (Stats, error) {
	var ret Stats
	db := s.getDB()
	if db == nil {
		return ret, ErrNotLoaded
	}
	keyPrefix := []byte(verdictKeyPrefix)
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(keyPrefix); it.ValidForPrefix(keyPrefix); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				var tmpVerdict Verdict
				if _, err := cbor.Decode(v, &tmpVerdict); err != nil {
					return err
				}
				if tmpVerdict.Valid {
					ret.Accepted++
				} else {
					ret.Rejected++
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return ret, err
}

func GetState() *State {
	return globalState
}

// BadgerLogger is a wrapper type to give our logger the expected interface
type BadgerLogger struct {
	logger *slog.Logger
}

func NewBadgerLogger() *BadgerLogger {
	return &BadgerLogger{
		logger: logging.GetLogger().With("component", "badger"),
	}
}

func (b *BadgerLogger) Errorf(msg string, args ...any) {
	b.logger.Error(badgerMsg(msg, args...))
}

func (b *BadgerLogger) Warningf(msg string, args ...any) {
	b.logger.Warn(badgerMsg(msg, args...))
}

func (b *BadgerLogger) Infof(msg string, args ...any) {
	b.logger.Info(badgerMsg(msg, args...))
}

func (b *BadgerLogger) Debugf(msg string, args ...any) {
	b.logger.Debug(badgerMsg(msg, args...))
}

// Badger messages carry their own trailing newline
func badgerMsg(msg string, args ...any) string {
	return strings.TrimSpace(fmt.Sprintf(msg, args...))
}
