package piececheck

import (
	"fmt"
	"time"

	g "github.com/anacrolix/generics"
	"go.etcd.io/bbolt"

	"github.com/anacrolix/torrent/bencode"
	"github.com/anacrolix/torrent/metainfo"
)

var stateDbBucket = []byte("piececheck")

// StateDB persists checker states between sessions, keyed by infohash, so a
// resumed torrent doesn't re-hash pieces it already confirmed good.
type StateDB struct {
	db *bbolt.DB
}

func OpenStateDB(filePath string) (*StateDB, error) {
	db, err := bbolt.Open(filePath, 0o600, &bbolt.Options{
		Timeout: time.Second,
	})
	if err != nil {
		return nil, err
	}
	return &StateDB{db: db}, nil
}

func (me *StateDB) Put(ih metainfo.Hash, state *CheckerState) error {
	b, err := bencode.Marshal(state)
	if err != nil {
		return fmt.Errorf("serializing state: %w", err)
	}
	return me.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(stateDbBucket)
		if err != nil {
			return err
		}
		return bucket.Put(ih[:], b)
	})
}

// Get returns the stored state for the given infohash, if there is one.
func (me *StateDB) Get(ih metainfo.Hash) (ret g.Option[*CheckerState], err error) {
	err = me.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(stateDbBucket)
		if bucket == nil {
			return nil
		}
		b := bucket.Get(ih[:])
		if b == nil {
			return nil
		}
		state := new(CheckerState)
		if err := bencode.Unmarshal(b, state); err != nil {
			return fmt.Errorf("deserializing state: %w", err)
		}
		ret.Set(state)
		return nil
	})
	return
}

func (me *StateDB) Delete(ih metainfo.Hash) error {
	return me.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(stateDbBucket)
		if bucket == nil {
			return nil
		}
		return bucket.Delete(ih[:])
	})
}

func (me *StateDB) Close() error {
	return me.db.Close()
}
