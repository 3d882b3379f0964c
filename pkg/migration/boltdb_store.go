package migration

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nspcc-dev/neo-migrate/pkg/deployer"
	"go.etcd.io/bbolt"
)

var (
	lastCompletedKey  = []byte("last")
	deploymentsPrefix = []byte("contract/")
)

// BoltDBStore is a Store backed by BoltDB file. Every network gets its own
// bucket, deployment records are stored there as JSON.
type BoltDBStore struct {
	db *bbolt.DB
}

// NewBoltDBStore opens (creating if needed) BoltDB file at the given path.
func NewBoltDBStore(fileName string) (*BoltDBStore, error) {
	dir := filepath.Dir(fileName)
	err := os.MkdirAll(dir, os.ModePerm)
	if err != nil {
		return nil, fmt.Errorf("could not create dir for BoltDB: %w", err)
	}
	db, err := bbolt.Open(fileName, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open state DB: %w", err)
	}
	return &BoltDBStore{db: db}, nil
}

// LastCompleted implements the Store interface.
func (s *BoltDBStore) LastCompleted(network string) (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(network))
		if b == nil {
			return nil
		}
		v := b.Get(lastCompletedKey)
		if v == nil {
			return nil
		}
		if len(v) != 4 {
			return fmt.Errorf("malformed last migration value for %s", network)
		}
		n = int(binary.LittleEndian.Uint32(v))
		return nil
	})
	return n, err
}

// SetLastCompleted implements the Store interface.
func (s *BoltDBStore) SetLastCompleted(network string, n int) error {
	var v = make([]byte, 4)
	binary.LittleEndian.PutUint32(v, uint32(n))
	return s.put(network, lastCompletedKey, v)
}

// PutDeployment implements the Store interface.
func (s *BoltDBStore) PutDeployment(network string, d deployer.Deployment) error {
	v, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.put(network, deploymentKey(d.Contract), v)
}

func deploymentKey(contract string) []byte {
	k := make([]byte, 0, len(deploymentsPrefix)+len(contract))
	k = append(k, deploymentsPrefix...)
	return append(k, contract...)
}

func (s *BoltDBStore) put(network string, k, v []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(network))
		if err != nil {
			return fmt.Errorf("could not create bucket for %s: %w", network, err)
		}
		return b.Put(k, v)
	})
}

// Deployments implements the Store interface.
func (s *BoltDBStore) Deployments(network string) ([]deployer.Deployment, error) {
	var res []deployer.Deployment
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(network))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Seek(deploymentsPrefix); k != nil && bytes.HasPrefix(k, deploymentsPrefix); k, v = c.Next() {
			var d deployer.Deployment
			if err := json.Unmarshal(v, &d); err != nil {
				return fmt.Errorf("malformed deployment record %s: %w", k, err)
			}
			res = append(res, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Contract < res[j].Contract })
	return res, nil
}

// Networks implements the Store interface.
func (s *BoltDBStore) Networks() ([]string, error) {
	var res []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			res = append(res, string(name))
			return nil
		})
	})
	return res, err
}

// Close releases all db resources.
func (s *BoltDBStore) Close() error {
	return s.db.Close()
}
