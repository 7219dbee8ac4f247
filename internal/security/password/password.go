// Package password hashes and verifies employee credentials.
//
// Two digest formats are understood: bcrypt ($2a$/$2b$/$2y$) and argon2id PHC
// strings ($argon2id$v=19$...). New digests use the configured scheme; verify
// and the already-hashed predicate accept both, so a scheme switch neither
// locks out nor re-hashes existing digests. Any new scheme must be added to
// IsHashed in the same change, or its digests will be hashed a second time on
// update.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Scheme names a digest format.
type Scheme string

const (
	Bcrypt   Scheme = "bcrypt"
	Argon2id Scheme = "argon2id"
)

const argonPrefix = "$argon2id$"

// MaxLength is the longest plaintext accepted, in bytes. bcrypt ignores
// anything past it, so both schemes refuse longer input.
const MaxLength = 72

var (
	ErrEmpty   = errors.New("password: empty plaintext")
	ErrTooLong = errors.New("password: longer than 72 bytes")
)

// Upper bounds for parameters read back from a stored argon2id digest.
// Verify runs argon2.IDKey with whatever the digest says, so anything past
// these is treated as not a digest at all.
const (
	maxArgonMemory      = 1 << 20 // KiB
	maxArgonTime        = 16
	maxArgonParallelism = 16
	minArgonSaltLen     = 8
	maxArgonSaltLen     = 64
	minArgonKeyLen      = 16
	maxArgonKeyLen      = 64
)

// ArgonParams are the argon2id cost parameters.
type ArgonParams struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
	SaltLen     uint32
}

var DefaultArgon = ArgonParams{Memory: 64 * 1024, Time: 3, Parallelism: 1, KeyLen: 32, SaltLen: 16}

// Hasher produces and checks salted one-way digests.
type Hasher struct {
	scheme     Scheme
	bcryptCost int
	argon      ArgonParams
}

// Option customises a Hasher.
type Option func(*Hasher)

// WithBcryptCost overrides bcrypt.DefaultCost. Costs below bcrypt.MinCost
// fall back to the default inside the bcrypt package.
func WithBcryptCost(cost int) Option {
	return func(h *Hasher) { h.bcryptCost = cost }
}

// WithArgonParams overrides DefaultArgon.
func WithArgonParams(p ArgonParams) Option {
	return func(h *Hasher) { h.argon = p }
}

// New returns a Hasher that emits digests in the given scheme.
func New(scheme Scheme, opts ...Option) (*Hasher, error) {
	switch scheme {
	case Bcrypt, Argon2id:
	case "":
		scheme = Bcrypt
	default:
		return nil, fmt.Errorf("password: unknown scheme %q", scheme)
	}
	h := &Hasher{scheme: scheme, bcryptCost: bcrypt.DefaultCost, argon: DefaultArgon}
	for _, opt := range opts {
		opt(h)
	}
	if err := h.argon.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// validate keeps configured parameters inside the range parseArgon accepts,
// so every digest this Hasher emits can be read back.
func (p ArgonParams) validate() error {
	switch {
	case p.Memory == 0 || p.Memory > maxArgonMemory:
		return fmt.Errorf("password: argon2id memory %d KiB out of range", p.Memory)
	case p.Time == 0 || p.Time > maxArgonTime:
		return fmt.Errorf("password: argon2id time %d out of range", p.Time)
	case p.Parallelism == 0 || p.Parallelism > maxArgonParallelism:
		return fmt.Errorf("password: argon2id parallelism %d out of range", p.Parallelism)
	case p.KeyLen < minArgonKeyLen || p.KeyLen > maxArgonKeyLen:
		return fmt.Errorf("password: argon2id key length %d out of range", p.KeyLen)
	case p.SaltLen != 0 && (p.SaltLen < minArgonSaltLen || p.SaltLen > maxArgonSaltLen):
		return fmt.Errorf("password: argon2id salt length %d out of range", p.SaltLen)
	}
	return nil
}

// Scheme returns the scheme used for new digests.
func (h *Hasher) Scheme() Scheme { return h.scheme }

// Hash returns a digest of plain with a fresh random salt, so two calls with
// the same input never return the same string.
func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}
	if len(plain) > MaxLength {
		return "", ErrTooLong
	}
	if h.scheme == Argon2id {
		return h.hashArgon(plain)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

// IsHashed is a structural check on the digest format. It exists so an
// update that re-sends the stored digest does not hash it again; it says
// nothing about whether the digest is genuine.
func (h *Hasher) IsHashed(value string) bool {
	if strings.HasPrefix(value, argonPrefix) {
		_, _, _, err := parseArgon(value)
		return err == nil
	}
	_, err := bcrypt.Cost([]byte(value))
	return err == nil
}

// Verify reports whether plain matches digest. Both branches compare in
// constant time.
func (h *Hasher) Verify(plain, digest string) bool {
	if strings.HasPrefix(digest, argonPrefix) {
		p, salt, want, err := parseArgon(digest)
		if err != nil {
			return false
		}
		got := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, uint32(len(want)))
		return subtle.ConstantTimeCompare(got, want) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

func (h *Hasher) hashArgon(plain string) (string, error) {
	saltLen := h.argon.SaltLen
	if saltLen == 0 {
		saltLen = DefaultArgon.SaltLen
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("argon2id salt: %w", err)
	}
	p := h.argon
	dk := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

// parseArgon splits $argon2id$v=19$m=..,t=..,p=..$<salt>$<key>.
func parseArgon(phc string) (ArgonParams, []byte, []byte, error) {
	var p ArgonParams
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, errors.New("argon2id: malformed digest")
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return p, nil, nil, errors.New("argon2id: unsupported version")
	}
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return p, nil, nil, errors.New("argon2id: malformed params")
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return p, nil, nil, fmt.Errorf("argon2id: param %s: %w", k, err)
		}
		switch k {
		case "m":
			if n > maxArgonMemory {
				return p, nil, nil, errors.New("argon2id: memory out of range")
			}
			p.Memory = uint32(n)
		case "t":
			if n > maxArgonTime {
				return p, nil, nil, errors.New("argon2id: time out of range")
			}
			p.Time = uint32(n)
		case "p":
			if n == 0 || n > maxArgonParallelism {
				return p, nil, nil, errors.New("argon2id: parallelism out of range")
			}
			p.Parallelism = uint8(n)
		default:
			return p, nil, nil, fmt.Errorf("argon2id: unknown param %q", k)
		}
	}
	if p.Memory == 0 || p.Time == 0 || p.Parallelism == 0 {
		return p, nil, nil, errors.New("argon2id: missing params")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("argon2id: salt: %w", err)
	}
	if len(salt) < minArgonSaltLen || len(salt) > maxArgonSaltLen {
		return p, nil, nil, errors.New("argon2id: salt length out of range")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) < minArgonKeyLen || len(key) > maxArgonKeyLen {
		return p, nil, nil, errors.New("argon2id: malformed key")
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
