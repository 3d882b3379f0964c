package simplestorage

import (
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

var valueKey = []byte("value")

// Set stores the value and notifies about the change.
func Set(value int) {
	ctx := storage.GetContext()
	storage.Put(ctx, valueKey, value)
	runtime.Notify("Changed", value)
}

// Get returns the stored value, 0 if nothing was set.
func Get() int {
	ctx := storage.GetReadOnlyContext()
	v := storage.Get(ctx, valueKey)
	if v == nil {
		return 0
	}
	return v.(int)
}
