// Package cryptomod is a native extension module wrapping blake2b hashing
// and bcrypt password hashing (spec §4.J).
package cryptomod

import (
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/blake2b"

	"kslang/internal/callable"
	"kslang/internal/kerr"
	"kslang/internal/module"
	"kslang/internal/object"
	"kslang/internal/value"
)

func init() {
	module.Register("crypto", newModule)
}

func newModule(argc int, argv []string) (*module.Module, error) {
	m := module.New("crypto", "<builtin>")
	m.Set("hash", callable.NewCFunc("crypto.hash", 1, hashFn))
	m.Set("password_hash", callable.NewCFunc("crypto.password_hash", 1, passwordHash))
	m.Set("password_verify", callable.NewCFunc("crypto.password_verify", 2, passwordVerify))
	return m, nil
}

func strArg(v object.Value) (string, error) {
	defer object.DecRef(v)
	s, ok := v.(*value.Str)
	if !ok {
		return "", kerr.New(kerr.TypeError, "expected str, got %s", typeName(v))
	}
	return s.S, nil
}

func typeName(v object.Value) string {
	if t := v.TypeOf(); t != nil {
		return t.Name
	}
	return "?"
}

func hashFn(args []object.Value) (object.Value, error) {
	s, err := strArg(args[0])
	if err != nil {
		return nil, err
	}
	sum := blake2b.Sum256([]byte(s))
	return value.NewStr(hex.EncodeToString(sum[:])), nil
}

func passwordHash(args []object.Value) (object.Value, error) {
	s, err := strArg(args[0])
	if err != nil {
		return nil, err
	}
	h, herr := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
	if herr != nil {
		return nil, kerr.New(kerr.InternalError, "crypto.password_hash: %v", herr)
	}
	return value.NewStr(string(h)), nil
}

func passwordVerify(args []object.Value) (object.Value, error) {
	hash, err := strArg(args[0])
	if err != nil {
		object.DecRef(args[1])
		return nil, err
	}
	pw, err := strArg(args[1])
	if err != nil {
		return nil, err
	}
	ok := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
	return value.Bool(ok), nil
}
