// Package checkpoint persists swarm training progress to a bbolt database
// so a long-running --train-swarm session can resume from its last
// completed epoch instead of restarting.
package checkpoint

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/schedsim/schedsim/scheduler"
	"github.com/schedsim/schedsim/swarm"
)

const epochsBucket = "epochs"

// Record is the persisted state for one completed epoch: the swarm-wide
// best configuration found so far, its cost, and that epoch's cost
// summary.
type Record struct {
	Epoch      int              `json:"epoch"`
	BestConfig scheduler.Config `json:"best_config"`
	BestCost   float64          `json:"best_cost"`
	EpochCost  swarm.EpochCost  `json:"epoch_cost"`
}

// Store wraps a bbolt database for epoch checkpointing.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) a checkpoint database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open checkpoint db at %s", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(epochsBucket))
		return errors.Wrap(err, "create epochs bucket")
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveEpoch persists one epoch's record, keyed by epoch number.
func (s *Store) SaveEpoch(rec Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(epochsBucket))
		encoded, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrap(err, "marshal epoch record")
		}
		return errors.Wrap(b.Put(epochKey(rec.Epoch), encoded), "put epoch record")
	})
}

// LastEpoch returns the highest-numbered epoch record stored, and false if
// none has been saved yet.
func (s *Store) LastEpoch() (Record, bool, error) {
	var rec Record
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(epochsBucket))
		c := b.Cursor()
		k, v := c.Last()
		if k == nil {
			return nil
		}
		found = true
		return errors.Wrap(json.Unmarshal(v, &rec), "unmarshal epoch record")
	})
	if err != nil {
		return Record{}, false, err
	}
	return rec, found, nil
}

// epochKey zero-pads the epoch number so bbolt's lexicographic key
// ordering (and thus Cursor.Last) agrees with numeric order.
func epochKey(epoch int) []byte {
	return []byte(fmt.Sprintf("%08d", epoch))
}
