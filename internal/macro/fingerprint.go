package macro

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// InstanceID identifies one configured binding instance.
type InstanceID uuid.UUID

// String returns the canonical UUID form.
func (id InstanceID) String() string {
	return uuid.UUID(id).String()
}

// instanceNamespace scopes InstanceID fingerprints.
var instanceNamespace = uuid.MustParse("4f1c2f7e-8a43-5b1e-9d60-0c6a3a7f5e21")

// Fingerprint returns the InstanceID of a binding of the given kind.
//
// The action kind and every parameter are encoded in a fixed order, each
// length-prefixed, and hashed into a version 5 UUID. Identical parameters
// always give the same ID regardless of how the map was built.
func Fingerprint(kind ActionKind, p Params) InstanceID {
	var names []string
	switch kind {
	case ActionKeyboard:
		names = keyboardParams
	case ActionWheel:
		names = wheelParams
	}

	buf := appendField(nil, string(kind))
	for _, kv := range p.ordered(names) {
		buf = appendField(buf, kv[0])
		buf = appendField(buf, kv[1])
	}
	return InstanceID(uuid.NewSHA1(instanceNamespace, buf))
}

func appendField(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}
