// Package catalog stores mesh snapshots in a badger database, keyed by UUID and indexed by name.
package catalog

import (
	"bytes"
	"runtime"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/gogo/protobuf/proto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey                 => CatalogState

	kMeshPrefix, MeshID (16 bytes)   => MeshDef
	...

	kNamePrefix, name bytes          => MeshID
	...

Names are not unique: putting a mesh under a name already in use repoints the name to the newer mesh.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

const (
	kMeshPrefix byte = 0x01
	kNamePrefix byte = 0x02

	catalogMajorVers = 2024
	catalogMinorVers = 1
)

// Opts configures Open.
type Opts struct {
	DbPathName string // empty gives an in-memory catalog
	ReadOnly   bool
	MeshConfig go2mesh.Config // used when restoring meshes
}

// Catalog is a db wrapper for a collection of meshes.
type Catalog struct {
	mu         sync.Mutex
	readOnly   bool
	stateDirty bool
	state      CatalogState
	db         *badger.DB
	cfg        go2mesh.Config
}

var _ libmesh.MeshAdder = (*Catalog)(nil)

func Open(opts Opts) (*Catalog, error) {
	cat := &Catalog{
		readOnly: opts.ReadOnly,
		cfg:      opts.MeshConfig,
	}
	if cat.cfg == (go2mesh.Config{}) {
		cat.cfg = go2mesh.DefaultConfig()
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false
	dbOpts.Logger = nil

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(go2mesh.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening catalog %q", opts.DbPathName)
	}

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = !cat.readOnly
		cat.state.MajorVers = catalogMajorVers
		cat.state.MinorVers = catalogMinorVers
	}
	if err == nil && (cat.state.MajorVers != catalogMajorVers || cat.state.MinorVers != catalogMinorVers) {
		err = errors.Errorf("catalog version %d.%d is incompatible", cat.state.MajorVers, cat.state.MinorVers)
	}
	if err != nil {
		cat.Close()
		return nil, err
	}
	return cat, nil
}

func (cat *Catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return proto.Unmarshal(val, &cat.state)
		})
	})
}

func (cat *Catalog) flushState() error {
	if !cat.stateDirty || cat.readOnly {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		stateBuf, err := proto.Marshal(&cat.state)
		if err != nil {
			return err
		}
		return txn.Set(gCatalogStateKey, stateBuf)
	})
	if err == nil {
		cat.stateDirty = false
	}
	return err
}

// Close flushes the catalog state and closes the db.
func (cat *Catalog) Close() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return nil
	}
	err := cat.flushState()
	if cerr := cat.db.Close(); err == nil {
		err = cerr
	}
	cat.db = nil
	return err
}

func (cat *Catalog) IsReadOnly() bool {
	return cat.readOnly
}

// NumMeshes returns how many meshes the catalog holds.
func (cat *Catalog) NumMeshes() int {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return int(cat.state.NumMeshes)
}

func meshKey(id uuid.UUID) []byte {
	key := make([]byte, 1+len(id))
	key[0] = kMeshPrefix
	copy(key[1:], id[:])
	return key
}

func nameKey(name string) []byte {
	key := make([]byte, 1+len(name))
	key[0] = kNamePrefix
	copy(key[1:], name)
	return key
}

// Put stores a snapshot of M under a new ID and points name at it.
func (cat *Catalog) Put(name string, M *libmesh.Mesh) (uuid.UUID, error) {
	if M == nil {
		return uuid.Nil, go2mesh.ErrNilMesh
	}
	if cat.readOnly {
		return uuid.Nil, go2mesh.ErrReadOnly
	}

	def := Snapshot(M)
	if name != "" {
		def.Name = name
	}
	buf, err := proto.Marshal(def)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()

	cat.mu.Lock()
	defer cat.mu.Unlock()

	err = cat.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(meshKey(id), buf); err != nil {
			return err
		}
		if def.Name != "" {
			return txn.Set(nameKey(def.Name), id[:])
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "storing mesh %q", def.Name)
	}
	cat.state.NumMeshes++
	cat.stateDirty = true
	return id, nil
}

// TryAddMesh stores M under its own name, reporting if it was added.
func (cat *Catalog) TryAddMesh(M *libmesh.Mesh) bool {
	_, err := cat.Put("", M)
	if err != nil {
		klog.Warningf("catalog: %v", err)
		return false
	}
	return true
}

func (cat *Catalog) getDef(txn *badger.Txn, id uuid.UUID) (*MeshDef, error) {
	item, err := txn.Get(meshKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, errors.Wrapf(go2mesh.ErrMeshNotFound, "id %v", id)
	}
	if err != nil {
		return nil, err
	}
	def := &MeshDef{}
	err = item.Value(func(val []byte) error {
		return proto.Unmarshal(val, def)
	})
	return def, err
}

// Get restores the mesh stored under id.
func (cat *Catalog) Get(id uuid.UUID) (*libmesh.Mesh, error) {
	var def *MeshDef
	err := cat.db.View(func(txn *badger.Txn) error {
		var err error
		def, err = cat.getDef(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return Restore(def, cat.cfg)
}

// LookupName returns the ID name currently points at.
func (cat *Catalog) LookupName(name string) (id uuid.UUID, err error) {
	err = cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nameKey(name))
		if err == badger.ErrKeyNotFound {
			return errors.Wrapf(go2mesh.ErrMeshNotFound, "name %q", name)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id, err = uuid.FromBytes(val)
			return err
		})
	})
	return id, err
}

// GetByName restores the mesh most recently put under name.
func (cat *Catalog) GetByName(name string) (*libmesh.Mesh, error) {
	id, err := cat.LookupName(name)
	if err != nil {
		return nil, err
	}
	return cat.Get(id)
}

// Delete removes the mesh stored under id, along with its name entry if the name still points at it.
func (cat *Catalog) Delete(id uuid.UUID) error {
	if cat.readOnly {
		return go2mesh.ErrReadOnly
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()

	err := cat.db.Update(func(txn *badger.Txn) error {
		def, err := cat.getDef(txn, id)
		if err != nil {
			return err
		}
		if err = txn.Delete(meshKey(id)); err != nil {
			return err
		}
		if def.Name == "" {
			return nil
		}
		item, err := txn.Get(nameKey(def.Name))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if bytes.Equal(val, id[:]) {
			return txn.Delete(nameKey(def.Name))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if cat.state.NumMeshes > 0 {
		cat.state.NumMeshes--
	}
	cat.stateDirty = true
	return nil
}

// List calls onMesh with the ID and name of each stored mesh, in ID order, until onMesh returns false.
func (cat *Catalog) List(onMesh func(id uuid.UUID, name string) bool) error {
	return cat.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         []byte{kMeshPrefix},
		})
		defer it.Close()

		var def MeshDef
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id, err := uuid.FromBytes(item.Key()[1:])
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				return proto.Unmarshal(val, &def)
			})
			if err != nil {
				return errors.Wrapf(err, "mesh %v", id)
			}
			if !onMesh(id, def.Name) {
				break
			}
		}
		return nil
	})
}

// Select sends each stored mesh whose name has the given prefix to onHit.
// Enumeration stops early if onHit's consumer stops reading and done is closed.
func (cat *Catalog) Select(namePrefix string, onHit chan<- *libmesh.Mesh, done <-chan struct{}) error {
	return cat.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         []byte{kMeshPrefix},
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			def := &MeshDef{}
			err := it.Item().Value(func(val []byte) error {
				return proto.Unmarshal(val, def)
			})
			if err != nil {
				return err
			}
			if !strings.HasPrefix(def.Name, namePrefix) {
				continue
			}
			M, err := Restore(def, cat.cfg)
			if err != nil {
				return err
			}
			select {
			case onHit <- M:
			case <-done:
				return nil
			}
		}
		return nil
	})
}
