package vm

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/ripemd160"

	"loxvm/bytecode"
)

// RegisterNatives installs the VM's built-in native functions as globals.
// Each one follows the same convention: a NativeFn returns a Value and an
// error message string, empty on success.
func RegisterNatives(vm *VM) {
	vm.defineNative("clock", 0, nativeClock)
	vm.defineNative("hash", 1, vm.nativeHash)
	vm.defineNative("pwhash", 1, vm.nativePwHash)
	vm.defineNative("pwverify", 2, nativePwVerify)
}

func (vm *VM) defineNative(name string, arity int, fn bytecode.NativeFn) {
	vm.DefineGlobal(name, bytecode.Obj_(&bytecode.ObjNative{Name: name, Arity: arity, Fn: fn}))
}

func nativeClock(args []bytecode.Value) (bytecode.Value, string) {
	return bytecode.Number(float64(time.Now().UnixNano()) / 1e9), ""
}

// nativeHash implements hash(str), a ripemd160 digest returned as a
// lowercase hex string.
func (vm *VM) nativeHash(args []bytecode.Value) (bytecode.Value, string) {
	if !args[0].IsString() {
		return bytecode.Nil(), "hash() argument must be a string."
	}
	h := ripemd160.New()
	h.Write([]byte(args[0].AsString().Chars))
	sum := h.Sum(nil)
	return bytecode.Obj_(vm.Interner.Intern(fmt.Sprintf("%x", sum))), ""
}

const (
	pwTime    = uint32(1)
	pwMemory  = uint32(64 * 1024)
	pwThreads = uint8(2)
	pwKeyLen  = uint32(32)
)

// nativePwHash implements pwhash(password), producing a PHC-formatted
// argon2id hash with a random salt.
func (vm *VM) nativePwHash(args []bytecode.Value) (bytecode.Value, string) {
	if !args[0].IsString() {
		return bytecode.Nil(), "pwhash() argument must be a string."
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return bytecode.Nil(), "pwhash() failed to generate salt."
	}
	sum := argon2.IDKey([]byte(args[0].AsString().Chars), salt, pwTime, pwMemory, pwThreads, pwKeyLen)
	encoded := fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s", pwMemory, pwTime, pwThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	)
	return bytecode.Obj_(vm.Interner.Intern(encoded)), ""
}

// nativePwVerify implements pwverify(hash, password), returning true/false.
func nativePwVerify(args []bytecode.Value) (bytecode.Value, string) {
	if !args[0].IsString() || !args[1].IsString() {
		return bytecode.Nil(), "pwverify() arguments must be strings."
	}
	m, t, p, salt, expected, err := parsePwHash(args[0].AsString().Chars)
	if err != nil {
		return bytecode.Nil(), "pwverify() malformed hash."
	}
	actual := argon2.IDKey([]byte(args[1].AsString().Chars), salt, t, m, p, uint32(len(expected)))
	return bytecode.Bool_(subtle.ConstantTimeCompare(actual, expected) == 1), ""
}

func parsePwHash(encoded string) (uint32, uint32, uint8, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, fmt.Errorf("invalid hash format")
	}
	params := strings.Split(parts[3], ",")
	if len(params) != 3 {
		return 0, 0, 0, nil, nil, fmt.Errorf("invalid hash params")
	}
	m64, err := strconv.ParseUint(strings.TrimPrefix(params[0], "m="), 10, 32)
	if err != nil {
		return 0, 0, 0, nil, nil, err
	}
	t64, err := strconv.ParseUint(strings.TrimPrefix(params[1], "t="), 10, 32)
	if err != nil {
		return 0, 0, 0, nil, nil, err
	}
	p64, err := strconv.ParseUint(strings.TrimPrefix(params[2], "p="), 10, 8)
	if err != nil {
		return 0, 0, 0, nil, nil, err
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, err
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, err
	}
	return uint32(m64), uint32(t64), uint8(p64), salt, hash, nil
}
