// Package store keeps champions and population checkpoints in LevelDB
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"evoarena/internal/evolution"
	"evoarena/internal/ga"
)

// ErrNotFound is returned when a run has no matching entry
var ErrNotFound = errors.New("store: not found")

// Store is a LevelDB-backed run store. Keys are
//
//	<run>/champion/<generation>
//	<run>/checkpoint/<generation>
//
// with zero padded generations so iteration follows generation order.
type Store struct {
	db *leveldb.DB
}

// Open opens (or creates) the database at path
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// OpenMemory opens a store that lives in memory only
func OpenMemory() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type checkpoint struct {
	Generation  int                   `json:"generation"`
	Individuals []ga.IndividualRecord `json:"individuals"`
}

func key(runID, kind string, generation int) []byte {
	return fmt.Appendf(nil, "%s/%s/%010d", runID, kind, generation)
}

func prefix(runID, kind string) *util.Range {
	return util.BytesPrefix(fmt.Appendf(nil, "%s/%s/", runID, kind))
}

func (s *Store) put(k []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Put(k, data, nil)
}

func (s *Store) get(k []byte, v any) error {
	data, err := s.db.Get(k, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, k)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// SaveChampion stores the summary (and champion) of an evaluated generation
func (s *Store) SaveChampion(runID string, summary evolution.Summary) error {
	return s.put(key(runID, "champion", summary.Generation), summary)
}

// Champion returns the summary saved for generation
func (s *Store) Champion(runID string, generation int) (evolution.Summary, error) {
	var summary evolution.Summary
	err := s.get(key(runID, "champion", generation), &summary)
	return summary, err
}

// Champions returns every saved summary of a run in generation order
func (s *Store) Champions(runID string) ([]evolution.Summary, error) {
	iter := s.db.NewIterator(prefix(runID, "champion"), nil)
	defer iter.Release()

	var out []evolution.Summary
	for iter.Next() {
		var summary evolution.Summary
		if err := json.Unmarshal(iter.Value(), &summary); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", iter.Key(), err)
		}
		out = append(out, summary)
	}
	return out, iter.Error()
}

// LatestChampion returns the summary of the last saved generation
func (s *Store) LatestChampion(runID string) (evolution.Summary, error) {
	var summary evolution.Summary
	err := s.last(prefix(runID, "champion"), &summary)
	return summary, err
}

// SaveCheckpoint stores a full generation
func (s *Store) SaveCheckpoint(_ context.Context, runID string, generation int, records []ga.IndividualRecord) error {
	return s.put(key(runID, "checkpoint", generation), checkpoint{Generation: generation, Individuals: records})
}

// LatestCheckpoint returns the most recent checkpoint of a run
func (s *Store) LatestCheckpoint(runID string) (int, []ga.IndividualRecord, error) {
	var cp checkpoint
	if err := s.last(prefix(runID, "checkpoint"), &cp); err != nil {
		return 0, nil, err
	}
	return cp.Generation, cp.Individuals, nil
}

func (s *Store) last(r *util.Range, v any) error {
	iter := s.db.NewIterator(r, nil)
	defer iter.Release()

	if !iter.Last() {
		if err := iter.Error(); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrNotFound, r.Start)
	}
	if err := json.Unmarshal(iter.Value(), v); err != nil {
		return fmt.Errorf("store: decode %s: %w", iter.Key(), err)
	}
	return nil
}

// OnGeneration saves the champion of every generation
func (s *Store) OnGeneration(_ context.Context, summary evolution.Summary) error {
	return s.SaveChampion(summary.RunID, summary)
}
