package licence

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const (
	ownerKey      = "owner"
	licencePrefix = "l"
)

func _deploy(data any, isUpdate bool) {
	if isUpdate {
		return
	}
	owner, ok := data.(interop.Hash160)
	if !ok || len(owner) != interop.Hash160Len {
		owner = runtime.GetScriptContainer().Sender
	}
	storage.Put(storage.GetContext(), ownerKey, owner)
}

func checkOwner(ctx storage.Context) {
	owner := storage.Get(ctx, ownerKey).(interop.Hash160)
	if !runtime.CheckWitness(owner) {
		panic("not witnessed by the owner")
	}
}

func licenceKey(id []byte) []byte {
	return append([]byte(licencePrefix), id...)
}

// Issue grants licence with the given id to the holder. It returns false if
// this id is already taken.
func Issue(id []byte, holder interop.Hash160) bool {
	if len(holder) != interop.Hash160Len {
		panic("invalid holder")
	}
	ctx := storage.GetContext()
	checkOwner(ctx)
	key := licenceKey(id)
	if storage.Get(ctx, key) != nil {
		return false
	}
	storage.Put(ctx, key, holder)
	runtime.Notify("Issued", id, holder)
	return true
}

// Revoke removes licence with the given id.
func Revoke(id []byte) bool {
	ctx := storage.GetContext()
	checkOwner(ctx)
	key := licenceKey(id)
	holder := storage.Get(ctx, key)
	if holder == nil {
		return false
	}
	storage.Delete(ctx, key)
	runtime.Notify("Revoked", id, holder.(interop.Hash160))
	return true
}

// HolderOf returns the holder of the licence or nil if it's not issued.
func HolderOf(id []byte) interop.Hash160 {
	h := storage.Get(storage.GetReadOnlyContext(), licenceKey(id))
	if h == nil {
		return nil
	}
	return h.(interop.Hash160)
}

// IsValid checks whether the licence is issued to the holder.
func IsValid(id []byte, holder interop.Hash160) bool {
	return HolderOf(id).Equals(holder)
}
