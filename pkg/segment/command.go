package segment

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/autopassphoto/passphoto/pkg/faults"
)

// DefaultCommand runs rembg reading the photo from stdin and writing the cut-out PNG
// to stdout.
var DefaultCommand = []string{"rembg", "i", "-", "-"}

// Command pipes the image through an external program.
type Command struct {
	// Args is the program and its arguments. DefaultCommand is used when empty.
	Args []string
}

// Segment runs the command with input on stdin and returns its stdout.
func (c Command) Segment(ctx context.Context, input []byte) ([]byte, error) {
	args := c.Args
	if len(args) == 0 {
		args = DefaultCommand
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // command comes from configuration
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "unable to run " + args[0]
		}

		return nil, faults.Wrap(faults.ErrSegmentationFailure, err, msg)
	}

	return stdout.Bytes(), nil
}

var _ Segmenter = Command{}
