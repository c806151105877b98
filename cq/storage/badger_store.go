package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/wbrown/janus-cq/cq"
)

const (
	rowPrefix  = 'r'
	metaPrefix = 'm'
)

// BadgerStore keeps relations in a badger database. Each row is stored
// under <'r'><name><0><seq> with the EncodeRow bytes as its value, so a
// prefix scan returns rows in load order. A metadata key per relation
// records its row count.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a store at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	return openBadger(opts)
}

// NewInMemoryBadgerStore creates a store that lives only in memory.
func NewInMemoryBadgerStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openBadger(opts)
}

func openBadger(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the underlying database
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func relationPrefix(kind byte, name string) []byte {
	key := make([]byte, 0, len(name)+2)
	key = append(key, kind)
	key = append(key, name...)
	return append(key, 0)
}

func rowKey(name string, seq uint64) []byte {
	key := relationPrefix(rowPrefix, name)
	return binary.BigEndian.AppendUint64(key, seq)
}

// Load replaces the rows of relation with everything rows yields and
// returns the number of rows written.
func (s *BadgerStore) Load(relation string, rows RowReader) (int, error) {
	if err := s.db.DropPrefix(relationPrefix(rowPrefix, relation)); err != nil {
		return 0, fmt.Errorf("failed to clear relation %s: %w", relation, err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	var seq uint64
	for rows.Next() {
		if err := wb.Set(rowKey(relation, seq), cq.EncodeRow(rows.Row())); err != nil {
			return 0, fmt.Errorf("failed to write row: %w", err)
		}
		seq++
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	count := binary.BigEndian.AppendUint64(nil, seq)
	if err := wb.Set(relationPrefix(metaPrefix, relation), count); err != nil {
		return 0, fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush relation %s: %w", relation, err)
	}
	return int(seq), nil
}

// Relations lists the loaded relation names with their row counts.
func (s *BadgerStore) Relations() (map[string]int, error) {
	result := make(map[string]int)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{metaPrefix}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := item.Key()
			name := string(key[1 : len(key)-1])
			err := item.Value(func(val []byte) error {
				if len(val) != 8 {
					return fmt.Errorf("corrupt metadata for %s", name)
				}
				result[name] = int(binary.BigEndian.Uint64(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return result, err
}

// Names returns the loaded relation names in sorted order
func (s *BadgerStore) Names() ([]string, error) {
	rels, err := s.Relations()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rels))
	for name := range rels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Open implements Source.
func (s *BadgerStore) Open(relation string, arity int) (RowReader, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(relationPrefix(metaPrefix, relation))
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("relation %s: %w", relation, ErrNoSuchRelation)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	txn := s.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchSize = 1000
	prefix := relationPrefix(rowPrefix, relation)
	opts.Prefix = prefix

	return &badgerRowReader{
		relation: relation,
		arity:    arity,
		txn:      txn,
		it:       txn.NewIterator(opts),
		prefix:   prefix,
	}, nil
}

type badgerRowReader struct {
	relation string
	arity    int
	txn      *badger.Txn
	it       *badger.Iterator
	prefix   []byte
	started  bool
	row      []cq.Constant
	err      error
}

func (r *badgerRowReader) Next() bool {
	if r.err != nil || r.it == nil {
		return false
	}
	if !r.started {
		r.it.Seek(r.prefix)
		r.started = true
	} else {
		r.it.Next()
	}
	if !r.it.ValidForPrefix(r.prefix) {
		r.row = nil
		return false
	}

	item := r.it.Item()
	if !bytes.HasPrefix(item.Key(), r.prefix) {
		return false
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		r.err = fmt.Errorf("relation %s: %w", r.relation, err)
		return false
	}
	row, err := cq.DecodeRow(value)
	if err != nil {
		r.err = fmt.Errorf("relation %s: %w", r.relation, err)
		return false
	}
	if r.arity > 0 && len(row) != r.arity {
		r.err = fmt.Errorf("relation %s: expected %d fields, got %d", r.relation, r.arity, len(row))
		return false
	}
	r.row = row
	return true
}

func (r *badgerRowReader) Row() []cq.Constant { return r.row }
func (r *badgerRowReader) Err() error         { return r.err }

func (r *badgerRowReader) Close() error {
	if r.it != nil {
		r.it.Close()
		r.txn.Discard()
		r.it = nil
	}
	return nil
}
