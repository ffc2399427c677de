package storage

import (
	"encoding/json"
	"errors"

	"genovault/internal/model"
)

// ErrVersionMismatch reports a persisted record written by an incompatible
// schema or codec version.
var ErrVersionMismatch = errors.New("record version mismatch")

// EncodeGC serialises a record for persistence.
func EncodeGC(gc *model.GC) ([]byte, error) {
	return json.Marshal(gc)
}

// DecodeGC deserialises a persisted record and checks its version stamp.
func DecodeGC(data []byte) (*model.GC, error) {
	var gc model.GC
	if err := json.Unmarshal(data, &gc); err != nil {
		return nil, err
	}
	if err := checkVersion(gc.VersionedRecord); err != nil {
		return nil, err
	}
	return &gc, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != model.SchemaVersion || v.CodecVersion != model.CodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
