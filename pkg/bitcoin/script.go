package bitcoin

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"
)

// Opcode bytes, per spec.md §4.5/§9. Push opcodes 0x01-0x4b are handled
// directly by the parser/serializer rather than named individually.
const (
	OpZero    byte = 0x00
	OpPushData1    = 0x4c
	OpPushData2    = 0x4d
	OpPushData4    = 0x4e
	Op1Negate      = 0x4f
	OpReserved     = 0x50
	Op1            = 0x51
	Op2            = 0x52
	Op3            = 0x53
	Op4            = 0x54
	Op5            = 0x55
	Op6            = 0x56
	Op7            = 0x57
	Op8            = 0x58
	Op9            = 0x59
	Op10           = 0x5a
	Op11           = 0x5b
	Op12           = 0x5c
	Op13           = 0x5d
	Op14           = 0x5e
	Op15           = 0x5f
	Op16           = 0x60

	OpNop      = 0x61
	OpIf       = 0x63
	OpNotIf    = 0x64
	OpElse     = 0x67
	OpEndIf    = 0x68
	OpVerify   = 0x69
	OpReturn   = 0x6a

	OpToAltStack   = 0x6b
	OpFromAltStack = 0x6c
	Op2Drop        = 0x6d
	Op2Dup         = 0x6e
	Op3Dup         = 0x6f
	Op2Over        = 0x70
	Op2Rot         = 0x71
	Op2Swap        = 0x72
	OpIfDup        = 0x73
	OpDepth        = 0x74
	OpDrop         = 0x75
	OpDup          = 0x76
	OpNip          = 0x77
	OpOver         = 0x78
	OpPick         = 0x79
	OpRoll         = 0x7a
	OpRot          = 0x7b
	OpSwap         = 0x7c
	OpTuck         = 0x7d

	OpSize = 0x82

	OpEqual       = 0x87
	OpEqualVerify = 0x88

	Op1Add               = 0x8b
	Op1Sub               = 0x8c
	OpNegate             = 0x8f
	OpAbs                = 0x90
	OpNot                = 0x91
	Op0NotEqual          = 0x92
	OpAdd                = 0x93
	OpSub                = 0x94
	OpBoolAnd            = 0x9a
	OpBoolOr             = 0x9b
	OpNumEqual           = 0x9c
	OpNumEqualVerify     = 0x9d
	OpNumNotEqual        = 0x9e
	OpLessThan           = 0x9f
	OpGreaterThan        = 0xa0
	OpLessThanOrEqual    = 0xa1
	OpGreaterThanOrEqual = 0xa2
	OpMin                = 0xa3
	OpMax                = 0xa4
	OpWithin             = 0xa5

	OpRipemd160           = 0xa6
	OpSha1                = 0xa7
	OpSha256              = 0xa8
	OpHash160             = 0xa9
	OpHash256             = 0xaa
	OpCodeSeparator       = 0xab
	OpCheckSig            = 0xac
	OpCheckSigVerify      = 0xad
	OpCheckMultiSig       = 0xae
	OpCheckMultiSigVerify = 0xaf

	OpNop1                = 0xb0
	OpCheckLockTimeVerify = 0xb1 // BIP65
	OpCheckSequenceVerify = 0xb2 // BIP112
	OpNop4                = 0xb3
	OpNop5                = 0xb4
	OpNop6                = 0xb5
	OpNop7                = 0xb6
	OpNop8                = 0xb7
	OpNop9                = 0xb8
	OpNop10               = 0xb9
)

// opNames maps opcodes this core recognizes (even if only to reject, like
// OP_CHECKMULTISIG) to their mnemonic, for Script.String().
var opNames = map[byte]string{
	OpZero: "OP_0", Op1Negate: "OP_1NEGATE", OpReserved: "OP_RESERVED",
	Op1: "OP_1", Op2: "OP_2", Op3: "OP_3", Op4: "OP_4", Op5: "OP_5",
	Op6: "OP_6", Op7: "OP_7", Op8: "OP_8", Op9: "OP_9", Op10: "OP_10",
	Op11: "OP_11", Op12: "OP_12", Op13: "OP_13", Op14: "OP_14", Op15: "OP_15", Op16: "OP_16",
	OpNop: "OP_NOP", OpIf: "OP_IF", OpNotIf: "OP_NOTIF", OpElse: "OP_ELSE", OpEndIf: "OP_ENDIF",
	OpVerify: "OP_VERIFY", OpReturn: "OP_RETURN",
	OpToAltStack: "OP_TOALTSTACK", OpFromAltStack: "OP_FROMALTSTACK",
	Op2Drop: "OP_2DROP", Op2Dup: "OP_2DUP", Op3Dup: "OP_3DUP", Op2Over: "OP_2OVER",
	Op2Rot: "OP_2ROT", Op2Swap: "OP_2SWAP", OpIfDup: "OP_IFDUP", OpDepth: "OP_DEPTH",
	OpDrop: "OP_DROP", OpDup: "OP_DUP", OpNip: "OP_NIP", OpOver: "OP_OVER",
	OpPick: "OP_PICK", OpRoll: "OP_ROLL", OpRot: "OP_ROT", OpSwap: "OP_SWAP", OpTuck: "OP_TUCK",
	OpSize: "OP_SIZE", OpEqual: "OP_EQUAL", OpEqualVerify: "OP_EQUALVERIFY",
	Op1Add: "OP_1ADD", Op1Sub: "OP_1SUB", OpNegate: "OP_NEGATE", OpAbs: "OP_ABS",
	OpNot: "OP_NOT", Op0NotEqual: "OP_0NOTEQUAL", OpAdd: "OP_ADD", OpSub: "OP_SUB",
	OpBoolAnd: "OP_BOOLAND", OpBoolOr: "OP_BOOLOR", OpNumEqual: "OP_NUMEQUAL",
	OpNumEqualVerify: "OP_NUMEQUALVERIFY", OpNumNotEqual: "OP_NUMNOTEQUAL",
	OpLessThan: "OP_LESSTHAN", OpGreaterThan: "OP_GREATERTHAN",
	OpLessThanOrEqual: "OP_LESSTHANOREQUAL", OpGreaterThanOrEqual: "OP_GREATERTHANOREQUAL",
	OpMin: "OP_MIN", OpMax: "OP_MAX", OpWithin: "OP_WITHIN",
	OpRipemd160: "OP_RIPEMD160", OpSha1: "OP_SHA1", OpSha256: "OP_SHA256",
	OpHash160: "OP_HASH160", OpHash256: "OP_HASH256", OpCodeSeparator: "OP_CODESEPARATOR",
	OpCheckSig: "OP_CHECKSIG", OpCheckSigVerify: "OP_CHECKSIGVERIFY",
	OpCheckMultiSig: "OP_CHECKMULTISIG", OpCheckMultiSigVerify: "OP_CHECKMULTISIGVERIFY",
	OpNop1: "OP_NOP1", OpCheckLockTimeVerify: "OP_CHECKLOCKTIMEVERIFY",
	OpCheckSequenceVerify: "OP_CHECKSEQUENCEVERIFY", OpNop4: "OP_NOP4", OpNop5: "OP_NOP5",
	OpNop6: "OP_NOP6", OpNop7: "OP_NOP7", OpNop8: "OP_NOP8", OpNop9: "OP_NOP9", OpNop10: "OP_NOP10",
}

// Command is one element of a Script's command list: either an opcode byte
// (IsOp true) or a raw push element (IsOp false).
type Command struct {
	IsOp bool
	Op   byte
	Elem []byte
}

// OpCmd builds an opcode Command.
func OpCmd(op byte) Command { return Command{IsOp: true, Op: op} }

// ElemCmd builds a push-element Command.
func ElemCmd(elem []byte) Command { return Command{IsOp: false, Elem: elem} }

// Script is an ordered sequence of commands: Bitcoin's stack-machine
// program for authorizing and locking transaction outputs (spec.md §3).
type Script []Command

// Equal reports whether two scripts hold the same command sequence.
func (s Script) Equal(other Script) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i].IsOp != other[i].IsOp || s[i].Op != other[i].Op || !bytesEqual(s[i].Elem, other[i].Elem) {
			return false
		}
	}
	return true
}

// String renders a Script as a space-separated list of opcode mnemonics and
// hex-encoded push elements, for debugging and CLI output.
func (s Script) String() string {
	parts := make([]string, 0, len(s))
	for _, cmd := range s {
		if cmd.IsOp {
			if name, ok := opNames[cmd.Op]; ok {
				parts = append(parts, name)
			} else {
				parts = append(parts, fmt.Sprintf("OP_[%d]", cmd.Op))
			}
		} else {
			parts = append(parts, fmt.Sprintf("%x", cmd.Elem))
		}
	}
	return strings.Join(parts, " ")
}

// serializeBody encodes the command list without the leading varint length.
func (s Script) serializeBody() ([]byte, error) {
	var buf bytes.Buffer
	for _, cmd := range s {
		if cmd.IsOp {
			buf.WriteByte(cmd.Op)
			continue
		}
		n := len(cmd.Elem)
		switch {
		case n <= 75:
			buf.WriteByte(byte(n))
		case n < 256:
			buf.WriteByte(OpPushData1)
			buf.WriteByte(byte(n))
		case n <= 520:
			buf.WriteByte(OpPushData2)
			buf.WriteByte(byte(n))
			buf.WriteByte(byte(n >> 8))
		default:
			return nil, fmt.Errorf("%w: push element of %d bytes exceeds the 520-byte limit", ErrFormat, n)
		}
		buf.Write(cmd.Elem)
	}
	return buf.Bytes(), nil
}

// Serialize encodes the Script as varint(len) ‖ body, the form used inside
// transaction inputs/outputs (spec.md §4.5).
func (s Script) Serialize() ([]byte, error) {
	body, err := s.serializeBody()
	if err != nil {
		return nil, err
	}
	return append(EncodeVarInt(uint64(len(body))), body...), nil
}

// ParseScriptBody parses a Script from its raw (non-varint-prefixed) body,
// for callers that hold a script template directly rather than a tx stream.
func ParseScriptBody(body []byte) (Script, error) {
	var cmds Script
	i := 0
	for i < len(body) {
		op := body[i]
		i++
		switch {
		case op >= 1 && op <= 75:
			n := int(op)
			if i+n > len(body) {
				return nil, fmt.Errorf("%w: push of %d bytes exceeds script body", ErrFormat, n)
			}
			cmds = append(cmds, ElemCmd(append([]byte{}, body[i:i+n]...)))
			i += n
		case op == OpPushData1:
			if i >= len(body) {
				return nil, fmt.Errorf("%w: truncated OP_PUSHDATA1 length", ErrFormat)
			}
			n := int(body[i])
			i++
			if i+n > len(body) {
				return nil, fmt.Errorf("%w: OP_PUSHDATA1 exceeds script body", ErrFormat)
			}
			cmds = append(cmds, ElemCmd(append([]byte{}, body[i:i+n]...)))
			i += n
		case op == OpPushData2:
			if i+2 > len(body) {
				return nil, fmt.Errorf("%w: truncated OP_PUSHDATA2 length", ErrFormat)
			}
			n := int(body[i]) | int(body[i+1])<<8
			i += 2
			if i+n > len(body) {
				return nil, fmt.Errorf("%w: OP_PUSHDATA2 exceeds script body", ErrFormat)
			}
			cmds = append(cmds, ElemCmd(append([]byte{}, body[i:i+n]...)))
			i += n
		default:
			cmds = append(cmds, OpCmd(op))
		}
	}
	return cmds, nil
}

// DeserializeScript reads a varint-prefixed Script from r (the form used
// inside transaction inputs/outputs).
func DeserializeScript(r *bytes.Reader) (Script, error) {
	length, err := readVarIntFrom(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read script length: %w", err)
	}
	body := make([]byte, length)
	if _, err := readFull(r, body); err != nil {
		return nil, fmt.Errorf("failed to read script body: %w", err)
	}
	return ParseScriptBody(body)
}

// ParseScript parses a varint-prefixed Script from a standalone byte slice
// (e.g. hex decoded at the CLI), requiring the whole slice to be consumed.
func ParseScript(data []byte) (Script, error) {
	r := bytes.NewReader(data)
	s, err := DeserializeScript(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after script", ErrFormat, r.Len())
	}
	return s, nil
}

// encodeNum encodes an integer in Script's modified little-endian number
// format: magnitude in little-endian bytes, with a sign bit in the high bit
// of the last byte (spec.md §4.5).
func encodeNum(num int64) []byte {
	if num == 0 {
		return nil
	}
	negative := num < 0
	abs := num
	if negative {
		abs = -abs
	}
	var result []byte
	for abs != 0 {
		result = append(result, byte(abs&0xff))
		abs >>= 8
	}
	if result[len(result)-1]&0x80 != 0 {
		if negative {
			result = append(result, 0x80)
		} else {
			result = append(result, 0x00)
		}
	} else if negative {
		result[len(result)-1] |= 0x80
	}
	return result
}

// decodeNum decodes an integer from a Script element (the inverse of
// encodeNum).
func decodeNum(elem []byte) int64 {
	if len(elem) == 0 {
		return 0
	}
	bigEndian := make([]byte, len(elem))
	for i, b := range elem {
		bigEndian[len(elem)-1-i] = b
	}
	negative := bigEndian[0]&0x80 != 0
	var result int64
	if negative {
		result = int64(bigEndian[0] & 0x7f)
	} else {
		result = int64(bigEndian[0])
	}
	for _, b := range bigEndian[1:] {
		result = result<<8 + int64(b)
	}
	if negative {
		return -result
	}
	return result
}

// execState is the shared context threaded through opcode handlers: the
// main stack and altstack, the remaining command queue (for OP_IF/OP_NOTIF),
// and the sighash/locktime/sequence/version values signature and locktime
// opcodes check against.
type execState struct {
	stack    [][]byte
	altStack [][]byte
	cmds     *[]Command
	z        *big.Int
	locktime uint32
	sequence uint32
	version  uint32
}

func (s *execState) pop() ([]byte, bool) {
	if len(s.stack) == 0 {
		return nil, false
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return top, true
}

func (s *execState) push(b []byte) {
	s.stack = append(s.stack, b)
}

func (s *execState) pushBool(b bool) {
	if b {
		s.push(encodeNum(1))
	} else {
		s.push(encodeNum(0))
	}
}

// opcodeFunc is the uniform handler signature: every opcode receives the
// full execution state (spec.md §9's "context sum variant") and returns
// whether it succeeded.
type opcodeFunc func(s *execState) bool

// Evaluate runs the Script against digest z and the locktime/sequence/
// version values relevant to OP_CHECKLOCKTIMEVERIFY/OP_CHECKSEQUENCEVERIFY,
// returning true iff the script validates (spec.md §4.5). Script-invalid
// conditions are reported as false, never as an error (§7).
func (s Script) Evaluate(z *big.Int, locktime, sequence, version uint32) bool {
	cmds := make([]Command, len(s))
	copy(cmds, s)
	st := &execState{cmds: &cmds, z: z, locktime: locktime, sequence: sequence, version: version}

	for len(*st.cmds) > 0 {
		cmd := (*st.cmds)[0]
		*st.cmds = (*st.cmds)[1:]

		if !cmd.IsOp {
			st.push(cmd.Elem)
			continue
		}
		fn, ok := opcodeTable[cmd.Op]
		if !ok {
			return false
		}
		if !fn(st) {
			return false
		}
	}

	top, ok := st.pop()
	if !ok {
		return false
	}
	return len(top) != 0
}
