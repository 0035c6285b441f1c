package engine

import "sync"

// DatasetHandle owns one engine dataset. The release function runs exactly
// once no matter how many times Close is called, so deferred cleanup on
// every exit path cannot double-free. Handles hold a sync.Once and must not
// be copied.
type DatasetHandle struct {
	ref     DatasetRef
	release func() error
	once    sync.Once
}

func NewDatasetHandle(ref DatasetRef, release func() error) *DatasetHandle {
	return &DatasetHandle{ref: ref, release: release}
}

func (h *DatasetHandle) Ref() DatasetRef {
	return h.ref
}

// Close releases the underlying dataset. Calls after the first are no-ops.
func (h *DatasetHandle) Close() error {
	var err error
	h.once.Do(func() {
		if h.release != nil {
			err = h.release()
		}
	})

	return err
}

// BoosterHandle owns one engine booster under the same exactly-once release
// contract as DatasetHandle.
type BoosterHandle struct {
	ref     BoosterRef
	release func() error
	once    sync.Once
}

func NewBoosterHandle(ref BoosterRef, release func() error) *BoosterHandle {
	return &BoosterHandle{ref: ref, release: release}
}

func (h *BoosterHandle) Ref() BoosterRef {
	return h.ref
}

func (h *BoosterHandle) Close() error {
	var err error
	h.once.Do(func() {
		if h.release != nil {
			err = h.release()
		}
	})

	return err
}
