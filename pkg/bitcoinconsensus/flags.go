package bitcoinconsensus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/consensus-verifier/common/errs"
)

// Flags is a bitmask of script verification rules. Bit positions are defined
// by libbitcoinconsensus and must not change.
type Flags uint32

const (
	FlagsNone Flags = 0

	// FlagP2SH evaluates P2SH (BIP16) subscripts.
	FlagP2SH Flags = 1 << 0

	// FlagDERSig enforces strict DER (BIP66) compliance.
	FlagDERSig Flags = 1 << 2

	// FlagNullDummy enforces NULLDUMMY (BIP147).
	FlagNullDummy Flags = 1 << 4

	// FlagCheckLockTimeVerify enables CHECKLOCKTIMEVERIFY (BIP65).
	FlagCheckLockTimeVerify Flags = 1 << 9

	// FlagCheckSequenceVerify enables CHECKSEQUENCEVERIFY (BIP112).
	FlagCheckSequenceVerify Flags = 1 << 10

	// FlagWitness enables WITNESS (BIP141).
	FlagWitness Flags = 1 << 11

	FlagsAll = FlagP2SH | FlagDERSig | FlagNullDummy |
		FlagCheckLockTimeVerify | FlagCheckSequenceVerify | FlagWitness
)

// Mainnet soft fork activation heights. A flag is active for every block
// strictly above its threshold.
const (
	P2SHHeight                = 170059
	DERSigHeight              = 363724
	CheckLockTimeVerifyHeight = 388381
	CheckSequenceVerifyHeight = 419328
	WitnessHeight             = 481824
)

// HeightToFlags returns the verification flags active at the given block
// height on the Bitcoin main network.
func HeightToFlags(height uint32) Flags {
	flags := FlagsNone
	if height > P2SHHeight {
		flags |= FlagP2SH
	}
	if height > DERSigHeight {
		flags |= FlagDERSig
	}
	if height > CheckLockTimeVerifyHeight {
		flags |= FlagCheckLockTimeVerify
	}
	if height > CheckSequenceVerifyHeight {
		flags |= FlagCheckSequenceVerify
	}
	if height > WitnessHeight {
		flags |= FlagNullDummy | FlagWitness
	}
	return flags
}

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagP2SH, "P2SH"},
	{FlagDERSig, "DERSIG"},
	{FlagNullDummy, "NULLDUMMY"},
	{FlagCheckLockTimeVerify, "CHECKLOCKTIMEVERIFY"},
	{FlagCheckSequenceVerify, "CHECKSEQUENCEVERIFY"},
	{FlagWitness, "WITNESS"},
}

// short aliases accepted by ParseFlags
var flagAliases = map[string]Flags{
	"CLTV": FlagCheckLockTimeVerify,
	"CSV":  FlagCheckSequenceVerify,
}

// Has reports whether all bits of other are set in f.
func (f Flags) Has(other Flags) bool {
	return f&other == other
}

// Names returns the names of the known flags set in f, in bit order.
func (f Flags) Names() []string {
	names := make([]string, 0, len(flagNames))
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return names
}

func (f Flags) String() string {
	if f == FlagsNone {
		return "NONE"
	}
	names := f.Names()
	if unknown := f &^ FlagsAll; unknown != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(unknown)))
	}
	return strings.Join(names, "|")
}

// ParseFlags parses a flag set. Accepted forms are "all", "none", a decimal or
// 0x-prefixed integer, or flag names separated by "," or "|".
func ParseFlags(s string) (Flags, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "all":
		return FlagsAll, nil
	case "none":
		return FlagsNone, nil
	}

	if v, err := strconv.ParseUint(s, 0, 32); err == nil {
		return Flags(v), nil
	}

	flags := FlagsNone
	parsed := 0
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' }) {
		name := strings.ToUpper(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		flag, ok := lookupFlag(name)
		if !ok {
			return FlagsNone, errors.Wrapf(errs.InvalidArgument, "unknown verification flag %q", part)
		}
		flags |= flag
		parsed++
	}
	if parsed == 0 {
		return FlagsNone, errors.Wrapf(errs.InvalidArgument, "no verification flag in %q", s)
	}
	return flags, nil
}

func lookupFlag(name string) (Flags, bool) {
	for _, fn := range flagNames {
		if fn.name == name {
			return fn.flag, true
		}
	}
	flag, ok := flagAliases[name]
	return flag, ok
}
