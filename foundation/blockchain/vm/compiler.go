package vm

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// operandOps is the set of opcodes that read an immediate operand from the
// rest of their source line.
var operandOps = map[Op]bool{
	PUSH:   true,
	JUMP:   true,
	JUMPIF: true,
}

// Compile assembles source into a flat instruction stream. Lines hold one
// opcode each, case-insensitive, with "#" starting a trailing comment.
// A line of the form "name:" declares a label; JUMP and JUMPIF may name a
// label instead of a numeric target, resolved once the whole program has
// been scanned.
func Compile(source string) ([]Instruction, error) {
	var code []Instruction
	labels := make(map[string]int)
	type pendingJump struct {
		index int
		label string
	}
	var pending []pendingJump

	scanner := bufio.NewScanner(strings.NewReader(source))
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ":") {
			label := strings.TrimSuffix(line, ":")
			labels[label] = len(code)
			continue
		}

		fields := strings.Fields(line)
		mnemonic := strings.ToUpper(fields[0])

		op, exists := LookupOp(mnemonic)
		if !exists {
			return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrUnknownOpcode, fields[0])
		}

		var inst Instruction
		inst.Op = op

		if operandOps[op] {
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: %w: %s requires an operand", lineNo, ErrBadOperand, mnemonic)
			}

			operand := fields[1]

			if n, err := strconv.ParseInt(operand, 10, 64); err == nil {
				inst.Arg = n
			} else if op == JUMP || op == JUMPIF {
				pending = append(pending, pendingJump{index: len(code), label: operand})
			} else {
				return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrBadOperand, operand)
			}
		} else if len(fields) != 1 {
			return nil, fmt.Errorf("line %d: %w: %s takes no operand", lineNo, ErrBadOperand, mnemonic)
		}

		code = append(code, inst)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, pj := range pending {
		target, exists := labels[pj.label]
		if !exists {
			return nil, fmt.Errorf("%w: %q", ErrUnresolvedLabel, pj.label)
		}
		code[pj.index].Arg = int64(target)
	}

	return code, nil
}
