package stream

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"chessmcts/communication"
)

const maxLineSize = 64 * 1024

// StreamCommunicator exchanges one position per input line for one move per
// output line.
type StreamCommunicator struct {
	scanner *bufio.Scanner
	writer  *bufio.Writer
}

func NewStreamCommunicator(in io.Reader, out io.Writer) *StreamCommunicator {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &StreamCommunicator{
		scanner: scanner,
		writer:  bufio.NewWriter(out),
	}
}

var _ communication.Communicator = (*StreamCommunicator)(nil)

func (sc *StreamCommunicator) ReceivePosition() (string, error) {
	if !sc.scanner.Scan() {
		if err := sc.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read position: %w", err)
		}
		return "", io.EOF
	}

	line := strings.TrimSpace(sc.scanner.Text())
	if line == "" {
		return "", communication.ErrEmptyInput
	}
	return line, nil
}

func (sc *StreamCommunicator) SendMove(move string) error {
	if _, err := sc.writer.WriteString(move + "\n"); err != nil {
		return fmt.Errorf("failed to write move: %w", err)
	}
	if err := sc.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush move: %w", err)
	}
	return nil
}
