package bitcoin

// opcodeTable is the flat opcode-byte -> handler dispatch table spec.md §9
// calls for, in place of the teacher's switch statement: every handler
// shares the (stack, context) -> bool signature described there.
var opcodeTable = map[byte]opcodeFunc{
	OpZero:     opPushNum(0),
	Op1Negate:  opPushNum(-1),
	Op1:        opPushNum(1),
	Op2:        opPushNum(2),
	Op3:        opPushNum(3),
	Op4:        opPushNum(4),
	Op5:        opPushNum(5),
	Op6:        opPushNum(6),
	Op7:        opPushNum(7),
	Op8:        opPushNum(8),
	Op9:        opPushNum(9),
	Op10:       opPushNum(10),
	Op11:       opPushNum(11),
	Op12:       opPushNum(12),
	Op13:       opPushNum(13),
	Op14:       opPushNum(14),
	Op15:       opPushNum(15),
	Op16:       opPushNum(16),
	OpNop:      opNop,
	OpIf:       opIf,
	OpNotIf:    opNotIf,
	OpVerify:   opVerify,
	OpReturn:   opReturn,

	OpToAltStack:   opToAltStack,
	OpFromAltStack: opFromAltStack,
	Op2Drop:        op2Drop,
	Op2Dup:         op2Dup,
	Op3Dup:         op3Dup,
	Op2Over:        op2Over,
	Op2Rot:         op2Rot,
	Op2Swap:        op2Swap,
	OpIfDup:        opIfDup,
	OpDepth:        opDepth,
	OpDrop:         opDrop,
	OpDup:          opDup,
	OpNip:          opNip,
	OpOver:         opOver,
	OpPick:         opPick,
	OpRoll:         opRoll,
	OpRot:          opRot,
	OpSwap:         opSwap,
	OpTuck:         opTuck,

	OpSize: opSize,

	OpEqual:       opEqual,
	OpEqualVerify: opEqualVerify,

	Op1Add:               opNumUnary(func(a int64) int64 { return a + 1 }),
	Op1Sub:               opNumUnary(func(a int64) int64 { return a - 1 }),
	OpNegate:             opNumUnary(func(a int64) int64 { return -a }),
	OpAbs:                opNumUnary(func(a int64) int64 { if a < 0 { return -a }; return a }),
	OpNot:                opNumUnaryBool(func(a int64) bool { return a == 0 }),
	Op0NotEqual:          opNumUnaryBool(func(a int64) bool { return a != 0 }),
	OpAdd:                opNumBinary(func(a, b int64) int64 { return a + b }),
	OpSub:                opNumBinary(func(a, b int64) int64 { return a - b }),
	OpBoolAnd:            opNumBinaryBool(func(a, b int64) bool { return a != 0 && b != 0 }),
	OpBoolOr:             opNumBinaryBool(func(a, b int64) bool { return a != 0 || b != 0 }),
	OpNumEqual:           opNumBinaryBool(func(a, b int64) bool { return a == b }),
	OpNumEqualVerify:     opNumEqualVerify,
	OpNumNotEqual:        opNumBinaryBool(func(a, b int64) bool { return a != b }),
	OpLessThan:           opNumBinaryBool(func(a, b int64) bool { return a < b }),
	OpGreaterThan:        opNumBinaryBool(func(a, b int64) bool { return a > b }),
	OpLessThanOrEqual:    opNumBinaryBool(func(a, b int64) bool { return a <= b }),
	OpGreaterThanOrEqual: opNumBinaryBool(func(a, b int64) bool { return a >= b }),
	OpMin:                opNumBinary(func(a, b int64) int64 { if a < b { return a }; return b }),
	OpMax:                opNumBinary(func(a, b int64) int64 { if a > b { return a }; return b }),
	OpWithin:             opWithin,

	OpRipemd160:           opHash(Ripemd160),
	OpSha1:                opHash(Sha1),
	OpSha256:              opHash(Sha256),
	OpHash160:             opHash(Hash160Bytes),
	OpHash256:             opHash(Hash256Bytes),
	OpCodeSeparator:       opNop,
	OpCheckSig:            opCheckSig,
	OpCheckSigVerify:      opCheckSigVerify,
	OpCheckMultiSig:       opCheckMultiSigUnsupported,
	OpCheckMultiSigVerify: opCheckMultiSigUnsupported,

	OpNop1:                opNop,
	OpCheckLockTimeVerify: opCheckLockTimeVerify,
	OpCheckSequenceVerify: opCheckSequenceVerify,
	OpNop4:                opNop,
	OpNop5:                opNop,
	OpNop6:                opNop,
	OpNop7:                opNop,
	OpNop8:                opNop,
	OpNop9:                opNop,
	OpNop10:               opNop,
}

func opPushNum(n int64) opcodeFunc {
	return func(s *execState) bool {
		s.push(encodeNum(n))
		return true
	}
}

func opNop(s *execState) bool { return true }

// opIf and opNotIf implement IF/NOTIF branch splicing exactly as op.py's
// op_if does: scan the remaining commands for the matching ELSE/ENDIF at
// this nesting depth, then splice the taken branch back onto the front of
// the command queue.
func opIf(s *execState) bool  { return ifImpl(s, false) }
func opNotIf(s *execState) bool { return ifImpl(s, true) }

func ifImpl(s *execState, negate bool) bool {
	top, ok := s.pop()
	if !ok {
		return false
	}
	condition := decodeNum(top) != 0
	if negate {
		condition = !condition
	}

	trueItems, falseItems, ok := splitBranches(s.cmds)
	if !ok {
		return false
	}
	if condition {
		*s.cmds = append(append([]Command{}, trueItems...), (*s.cmds)...)
	} else {
		*s.cmds = append(append([]Command{}, falseItems...), (*s.cmds)...)
	}
	return true
}

// splitBranches consumes cmds up through the matching OP_ENDIF, returning
// the true-branch and false-branch command lists and leaving *cmds
// positioned just past OP_ENDIF. Returns ok=false if no matching OP_ENDIF
// is found.
func splitBranches(cmds *[]Command) (trueItems, falseItems []Command, ok bool) {
	remaining := *cmds
	depth := 1
	foundElse := false
	i := 0
	for i < len(remaining) {
		cmd := remaining[i]
		if cmd.IsOp && (cmd.Op == OpIf || cmd.Op == OpNotIf) {
			depth++
			appendBranch(&trueItems, &falseItems, foundElse, cmd)
			i++
			continue
		}
		if cmd.IsOp && cmd.Op == OpEndIf {
			depth--
			if depth == 0 {
				*cmds = remaining[i+1:]
				return trueItems, falseItems, true
			}
			appendBranch(&trueItems, &falseItems, foundElse, cmd)
			i++
			continue
		}
		if cmd.IsOp && cmd.Op == OpElse && depth == 1 {
			foundElse = true
			i++
			continue
		}
		appendBranch(&trueItems, &falseItems, foundElse, cmd)
		i++
	}
	return nil, nil, false
}

func appendBranch(trueItems, falseItems *[]Command, inElse bool, cmd Command) {
	if inElse {
		*falseItems = append(*falseItems, cmd)
	} else {
		*trueItems = append(*trueItems, cmd)
	}
}

func opVerify(s *execState) bool {
	top, ok := s.pop()
	if !ok {
		return false
	}
	return decodeNum(top) != 0
}

func opReturn(s *execState) bool { return false }

func opToAltStack(s *execState) bool {
	top, ok := s.pop()
	if !ok {
		return false
	}
	s.altStack = append(s.altStack, top)
	return true
}

func opFromAltStack(s *execState) bool {
	if len(s.altStack) == 0 {
		return false
	}
	top := s.altStack[len(s.altStack)-1]
	s.altStack = s.altStack[:len(s.altStack)-1]
	s.push(top)
	return true
}

func op2Drop(s *execState) bool {
	_, ok1 := s.pop()
	_, ok2 := s.pop()
	return ok1 && ok2
}

func op2Dup(s *execState) bool {
	if len(s.stack) < 2 {
		return false
	}
	n := len(s.stack)
	s.push(s.stack[n-2])
	s.push(s.stack[n-1])
	return true
}

func op3Dup(s *execState) bool {
	if len(s.stack) < 3 {
		return false
	}
	n := len(s.stack)
	s.push(s.stack[n-3])
	s.push(s.stack[n-2])
	s.push(s.stack[n-1])
	return true
}

func op2Over(s *execState) bool {
	if len(s.stack) < 4 {
		return false
	}
	n := len(s.stack)
	s.push(s.stack[n-4])
	s.push(s.stack[n-3])
	return true
}

func op2Rot(s *execState) bool {
	if len(s.stack) < 6 {
		return false
	}
	n := len(s.stack)
	a, b := s.stack[n-6], s.stack[n-5]
	s.stack = append(s.stack[:n-6], s.stack[n-4:]...)
	s.push(a)
	s.push(b)
	return true
}

func op2Swap(s *execState) bool {
	if len(s.stack) < 4 {
		return false
	}
	n := len(s.stack)
	s.stack[n-4], s.stack[n-2] = s.stack[n-2], s.stack[n-4]
	s.stack[n-3], s.stack[n-1] = s.stack[n-1], s.stack[n-3]
	return true
}

func opIfDup(s *execState) bool {
	if len(s.stack) == 0 {
		return false
	}
	top := s.stack[len(s.stack)-1]
	if decodeNum(top) != 0 {
		s.push(top)
	}
	return true
}

func opDepth(s *execState) bool {
	s.push(encodeNum(int64(len(s.stack))))
	return true
}

func opDrop(s *execState) bool {
	_, ok := s.pop()
	return ok
}

func opDup(s *execState) bool {
	if len(s.stack) == 0 {
		return false
	}
	s.push(s.stack[len(s.stack)-1])
	return true
}

func opNip(s *execState) bool {
	if len(s.stack) < 2 {
		return false
	}
	n := len(s.stack)
	s.stack = append(s.stack[:n-2], s.stack[n-1])
	return true
}

func opOver(s *execState) bool {
	if len(s.stack) < 2 {
		return false
	}
	n := len(s.stack)
	s.push(s.stack[n-2])
	return true
}

func opPick(s *execState) bool {
	top, ok := s.pop()
	if !ok {
		return false
	}
	n := decodeNum(top)
	if n < 0 || int(n) >= len(s.stack) {
		return false
	}
	s.push(s.stack[len(s.stack)-1-int(n)])
	return true
}

func opRoll(s *execState) bool {
	top, ok := s.pop()
	if !ok {
		return false
	}
	n := decodeNum(top)
	if n < 0 || int(n) >= len(s.stack) {
		return false
	}
	idx := len(s.stack) - 1 - int(n)
	item := s.stack[idx]
	s.stack = append(s.stack[:idx], s.stack[idx+1:]...)
	s.push(item)
	return true
}

func opRot(s *execState) bool {
	if len(s.stack) < 3 {
		return false
	}
	n := len(s.stack)
	s.stack[n-3], s.stack[n-2], s.stack[n-1] = s.stack[n-2], s.stack[n-1], s.stack[n-3]
	return true
}

func opSwap(s *execState) bool {
	if len(s.stack) < 2 {
		return false
	}
	n := len(s.stack)
	s.stack[n-2], s.stack[n-1] = s.stack[n-1], s.stack[n-2]
	return true
}

func opTuck(s *execState) bool {
	if len(s.stack) < 2 {
		return false
	}
	n := len(s.stack)
	top := s.stack[n-1]
	tail := append([]byte{}, top...)
	s.stack = append(s.stack[:n-2:n-2], tail, s.stack[n-2], s.stack[n-1])
	return true
}

func opSize(s *execState) bool {
	if len(s.stack) == 0 {
		return false
	}
	top := s.stack[len(s.stack)-1]
	s.push(encodeNum(int64(len(top))))
	return true
}

func opEqual(s *execState) bool {
	a, ok1 := s.pop()
	b, ok2 := s.pop()
	if !ok1 || !ok2 {
		return false
	}
	s.pushBool(bytesEqual(a, b))
	return true
}

func opEqualVerify(s *execState) bool {
	if !opEqual(s) {
		return false
	}
	return opVerify(s)
}

func opNumUnary(f func(int64) int64) opcodeFunc {
	return func(s *execState) bool {
		top, ok := s.pop()
		if !ok {
			return false
		}
		s.push(encodeNum(f(decodeNum(top))))
		return true
	}
}

func opNumUnaryBool(f func(int64) bool) opcodeFunc {
	return func(s *execState) bool {
		top, ok := s.pop()
		if !ok {
			return false
		}
		s.pushBool(f(decodeNum(top)))
		return true
	}
}

func opNumBinary(f func(a, b int64) int64) opcodeFunc {
	return func(s *execState) bool {
		b, ok1 := s.pop()
		a, ok2 := s.pop()
		if !ok1 || !ok2 {
			return false
		}
		s.push(encodeNum(f(decodeNum(a), decodeNum(b))))
		return true
	}
}

func opNumBinaryBool(f func(a, b int64) bool) opcodeFunc {
	return func(s *execState) bool {
		b, ok1 := s.pop()
		a, ok2 := s.pop()
		if !ok1 || !ok2 {
			return false
		}
		s.pushBool(f(decodeNum(a), decodeNum(b)))
		return true
	}
}

func opNumEqualVerify(s *execState) bool {
	if !opNumBinaryBool(func(a, b int64) bool { return a == b })(s) {
		return false
	}
	return opVerify(s)
}

func opWithin(s *execState) bool {
	maxB, ok1 := s.pop()
	minB, ok2 := s.pop()
	xB, ok3 := s.pop()
	if !ok1 || !ok2 || !ok3 {
		return false
	}
	x, min, max := decodeNum(xB), decodeNum(minB), decodeNum(maxB)
	s.pushBool(x >= min && x < max)
	return true
}

func opHash(f func([]byte) []byte) opcodeFunc {
	return func(s *execState) bool {
		top, ok := s.pop()
		if !ok {
			return false
		}
		s.push(f(top))
		return true
	}
}

// opCheckSig implements OP_CHECKSIG, tolerating a malformed SEC/DER pair by
// pushing 0 (a failed check) rather than failing the whole evaluation
// (spec.md §4.5's parse-failure-tolerant behavior, grounded in op.py's
// op_checksig). Only a stack underflow fails the opcode itself.
func opCheckSig(s *execState) bool {
	secPubkey, ok1 := s.pop()
	derSignature, ok2 := s.pop()
	if !ok1 || !ok2 {
		return false
	}
	point, err := ParseSEC(secPubkey)
	if err != nil {
		s.pushBool(false)
		return true
	}
	// DER signatures in scripts carry a trailing sighash-type byte.
	if len(derSignature) == 0 {
		s.pushBool(false)
		return true
	}
	sig, err := ParseDER(derSignature[:len(derSignature)-1])
	if err != nil {
		s.pushBool(false)
		return true
	}
	s.pushBool(point.Verify(s.z, sig))
	return true
}

func opCheckSigVerify(s *execState) bool {
	if !opCheckSig(s) {
		return false
	}
	return opVerify(s)
}

// opCheckMultiSigUnsupported reports OP_CHECKMULTISIG/VERIFY as script-
// invalid: the Open Questions decision in SPEC_FULL.md §5 leaves
// multi-signature verification out of scope for this core.
func opCheckMultiSigUnsupported(s *execState) bool { return false }

// opCheckLockTimeVerify implements BIP-65: fails unless sequence is not
// final, locktime and the stack value are on the same side of the
// 500,000,000 threshold (block height vs. unix time), and the stack value
// does not exceed the transaction's actual locktime.
func opCheckLockTimeVerify(s *execState) bool {
	if len(s.stack) == 0 {
		return false
	}
	top := s.stack[len(s.stack)-1]
	n := decodeNum(top)
	if n < 0 {
		return false
	}
	if s.sequence == 0xffffffff {
		return false
	}
	const threshold = 500000000
	locktimeIsHeight := s.locktime < threshold
	stackIsHeight := n < threshold
	if locktimeIsHeight != stackIsHeight {
		return false
	}
	return n <= int64(s.locktime)
}

// opCheckSequenceVerify implements BIP-112 relative-locktime checks.
func opCheckSequenceVerify(s *execState) bool {
	if len(s.stack) == 0 {
		return false
	}
	top := s.stack[len(s.stack)-1]
	n := decodeNum(top)
	if n < 0 {
		return false
	}
	if s.version < 2 {
		return false
	}
	const disableFlag = 1 << 31
	if uint32(n)&disableFlag != 0 {
		return true
	}
	if s.sequence&disableFlag != 0 {
		return false
	}
	const typeFlag = 1 << 22
	const mask = 0x0000ffff
	if uint32(n)&typeFlag != s.sequence&typeFlag {
		return false
	}
	if int64(uint32(n)&mask) > int64(s.sequence&mask) {
		return false
	}
	return true
}
