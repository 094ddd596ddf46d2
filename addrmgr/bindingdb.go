// Copyright (c) 2021-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/lanaddr/wire"
	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	// bindingDbName is the name of the binding database directory within
	// the data directory.
	bindingDbName = "bindings"

	// serializedAddressLen is the length of a serialized node address.
	serializedAddressLen = 4
)

// bindingKeyPrefix is the key prefix of every persisted binding.  The
// hardware identifier follows it.
var bindingKeyPrefix = []byte("bind")

// bindingKey returns the database key for the provided hardware identifier.
func bindingKey(hw wire.HardwareID) []byte {
	key := make([]byte, len(bindingKeyPrefix)+1)
	copy(key, bindingKeyPrefix)
	key[len(bindingKeyPrefix)] = byte(hw)
	return key
}

// convertLdbErr converts the passed leveldb error into an address table error
// with the provided description.
func convertLdbErr(ldbErr error, desc string) Error {
	switch {
	case ldberrors.IsCorrupted(ldbErr):
		desc = fmt.Sprintf("%s: database corrupted: %v", desc, ldbErr)
	case errors.Is(ldbErr, leveldb.ErrClosed):
		desc = fmt.Sprintf("%s: database not open: %v", desc, ldbErr)
	default:
		desc = fmt.Sprintf("%s: %v", desc, ldbErr)
	}
	return makeError(ErrBindingDB, desc)
}

// OpenBindingDB loads (or creates when needed) the binding database in the
// provided data directory and returns a handle to it.
func OpenBindingDB(dataDir string) (*leveldb.DB, error) {
	dbPath := filepath.Join(dataDir, bindingDbName)

	// The error can be ignored here since the call to leveldb.OpenFile will
	// fail if the directory couldn't be created.
	if _, err := os.Stat(dbPath); err != nil {
		_ = os.MkdirAll(dataDir, 0700)
	}

	log.Infof("Loading binding database from '%s'", dbPath)
	opts := opt.Options{
		Strict:      opt.DefaultStrict,
		Compression: opt.NoCompression,
		Filter:      filter.NewBloomFilter(10),
	}
	db, err := leveldb.OpenFile(dbPath, &opts)
	if err != nil {
		return nil, convertLdbErr(err, "failed to open binding database")
	}
	return db, nil
}

// readBindings returns every binding persisted in the database.
func readBindings(db *leveldb.DB) ([]Binding, error) {
	iter := db.NewIterator(util.BytesPrefix(bindingKeyPrefix), nil)
	defer iter.Release()

	var bindings []Binding
	for iter.Next() {
		key, value := iter.Key(), iter.Value()
		if len(key) != len(bindingKeyPrefix)+1 ||
			len(value) != serializedAddressLen {

			str := fmt.Sprintf("malformed binding entry %x => %x", key, value)
			return nil, makeError(ErrBindingDB, str)
		}
		bindings = append(bindings, Binding{
			Hardware: wire.HardwareID(key[len(bindingKeyPrefix)]),
			Address:  wire.NodeAddress(binary.LittleEndian.Uint32(value)),
		})
	}
	if err := iter.Error(); err != nil {
		return nil, convertLdbErr(err, "failed to iterate bindings")
	}
	return bindings, nil
}

// loadBindings populates the table from the binding database.  When the
// persisted bindings are malformed they are discarded and the table starts
// empty.
func (t *AddressTable) loadBindings() {
	bindings, err := readBindings(t.db)
	if err != nil {
		log.Errorf("Failed to load bindings: %v", err)
		t.mtx.Lock()
		t.changed = true
		t.mtx.Unlock()
		return
	}

	t.mtx.Lock()
	for _, b := range bindings {
		t.bind(b.Hardware, b.Address)
	}
	t.changed = false
	n := len(t.byHardware)
	t.mtx.Unlock()

	log.Infof("Loaded %d bindings from the binding database", n)
}

// flushBindings writes the current bindings to the binding database when they
// changed since the last flush, removing entries that are no longer bound.
// The snapshot is taken under the table mutex, but the database is written
// without holding it.
func (t *AddressTable) flushBindings() {
	t.mtx.Lock()
	if !t.changed {
		// Nothing changed since last flushBindings call.
		t.mtx.Unlock()
		return
	}
	bindings := t.bindings()
	t.changed = false
	t.mtx.Unlock()

	if err := writeBindings(t.db, bindings); err != nil {
		log.Errorf("Failed to flush bindings: %v", err)
		t.mtx.Lock()
		t.changed = true
		t.mtx.Unlock()
		return
	}
	log.Debugf("Flushed %d bindings", len(bindings))
}

// writeBindings atomically replaces the persisted bindings with the provided
// ones.
func writeBindings(db *leveldb.DB, bindings []Binding) error {
	keep := make(map[wire.HardwareID]struct{}, len(bindings))
	var batch leveldb.Batch
	for _, b := range bindings {
		var value [serializedAddressLen]byte
		binary.LittleEndian.PutUint32(value[:], uint32(b.Address))
		batch.Put(bindingKey(b.Hardware), value[:])
		keep[b.Hardware] = struct{}{}
	}

	iter := db.NewIterator(util.BytesPrefix(bindingKeyPrefix), nil)
	for iter.Next() {
		key := iter.Key()
		if len(key) != len(bindingKeyPrefix)+1 {
			batch.Delete(append([]byte(nil), key...))
			continue
		}
		if _, ok := keep[wire.HardwareID(key[len(bindingKeyPrefix)])]; !ok {
			batch.Delete(append([]byte(nil), key...))
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return convertLdbErr(err, "failed to iterate bindings")
	}

	if err := db.Write(&batch, nil); err != nil {
		return convertLdbErr(err, "failed to write bindings")
	}
	return nil
}
