// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package history

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/unisearch/core"
)

// Key prefix for history records. The composite key appends the creation
// timestamp and record ID in BigEndian so lexicographic iteration is
// chronological.
const historyRecordPrefix = "hisrec"

// Store remembers completed searches.
type Store interface {
	// Append records one completed search.
	Append(ctx context.Context, record core.HistoryRecord) error

	// Recent returns up to limit records, most recent first.
	Recent(ctx context.Context, limit int) ([]core.HistoryRecord, error)

	// Close releases the underlying database.
	Close() error
}

// badgerStore implements Store on BadgerDB.
type badgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ Store = (*badgerStore)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenStore opens a history store at the given path.
// Creates the directory if it doesn't exist.
//
// Returns Store interface to enforce abstraction.
func OpenStore(filePath string) (Store, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := os.MkdirAll(filePath, 0755); err != nil {
			return nil, err
		}
		info, err = os.Stat(filePath)
		if err != nil {
			return nil, err
		}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", filePath)
	}

	return open(badger.DefaultOptions(filePath))
}

// OpenMemoryStore opens an in-memory history store. Used in tests.
func OpenMemoryStore() (Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (Store, error) {
	logger := slog.Default().With("component", "history")
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &badgerStore{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the BadgerDB database.
func (s *badgerStore) Close() error {
	return s.db.Close()
}

// Append stores one record under its time-ordered key.
func (s *badgerStore) Append(ctx context.Context, record core.HistoryRecord) error {
	if err := core.ValidateHistoryRecord(&record); err != nil {
		return err
	}

	key := makeHistoryKey(record)
	value := make([]byte, core.HistoryRecordMUS.Size(record))
	core.HistoryRecordMUS.Marshal(record, value)

	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Set(key, value)
	})
}

// Recent scans the record prefix in reverse, newest first.
func (s *badgerStore) Recent(ctx context.Context, limit int) ([]core.HistoryRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidLimit)
	}

	var records []core.HistoryRecord
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(historyRecordPrefix + ":")
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Reverse iteration must seek past the last possible key under
		// the prefix.
		seek := append([]byte(historyRecordPrefix+":"), 0xff)
		for iter.Seek(seek); iter.Valid() && len(records) < limit; iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				record, _, err := core.HistoryRecordMUS.Unmarshal(val)
				if err != nil {
					return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// makeHistoryKey generates the composite key for a record.
// Format: prefix:timestamp:id, timestamp and id in BigEndian.
func makeHistoryKey(record core.HistoryRecord) []byte {
	prefix := historyRecordPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(record.CreatedAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(record.Id))
	return buf
}
