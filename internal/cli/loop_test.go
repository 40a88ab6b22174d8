package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLoopAnswersAndQuits(t *testing.T) {
	in := strings.NewReader("what is go\nquit\n")
	var out, errOut bytes.Buffer

	err := runLoop(context.Background(), in, &out, &errOut, func(ctx context.Context, q string) (string, error) {
		assert.Equal(t, "what is go", q)
		return "a language", nil
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "a language")
	assert.Contains(t, out.String(), separator)
	assert.Empty(t, errOut.String())
}

func TestRunLoopIsolatesFailures(t *testing.T) {
	in := strings.NewReader("hello\nboom\nworld\nquit\n")
	var out, errOut bytes.Buffer

	var asked []string
	err := runLoop(context.Background(), in, &out, &errOut, func(ctx context.Context, q string) (string, error) {
		asked = append(asked, q)
		if q == "boom" {
			return "", fmt.Errorf("agent invocation failed: provider down")
		}
		return "answer to " + q, nil
	})
	require.NoError(t, err)

	// All three turns ran; the failure in the middle did not stop the loop.
	assert.Equal(t, []string{"hello", "boom", "world"}, asked)
	assert.Contains(t, out.String(), "answer to hello")
	assert.Contains(t, out.String(), "answer to world")
	assert.Contains(t, errOut.String(), "provider down")
}

func TestRunLoopQuitCaseInsensitive(t *testing.T) {
	for _, word := range []string{"quit", "QUIT", "Exit", "exit"} {
		t.Run(word, func(t *testing.T) {
			in := strings.NewReader(word + "\n")
			var out, errOut bytes.Buffer

			err := runLoop(context.Background(), in, &out, &errOut, func(ctx context.Context, q string) (string, error) {
				t.Fatalf("ask must not run for %q", word)
				return "", nil
			})
			require.NoError(t, err)
		})
	}
}

func TestRunLoopEmptyLineReprompts(t *testing.T) {
	in := strings.NewReader("\n   \nquit\n")
	var out, errOut bytes.Buffer

	err := runLoop(context.Background(), in, &out, &errOut, func(ctx context.Context, q string) (string, error) {
		t.Fatal("ask must not run for empty input")
		return "", nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out.String(), emptyHint))
	assert.Equal(t, 3, strings.Count(out.String(), promptText))
}

func TestRunLoopEOFTerminates(t *testing.T) {
	in := strings.NewReader("") // closed stdin, no quit typed
	var out, errOut bytes.Buffer

	err := runLoop(context.Background(), in, &out, &errOut, func(ctx context.Context, q string) (string, error) {
		t.Fatal("ask must not run")
		return "", nil
	})
	require.NoError(t, err)
}

func TestRunLoopTrimsWhitespace(t *testing.T) {
	in := strings.NewReader("  question with space  \n  QUIT  \n")
	var out, errOut bytes.Buffer

	err := runLoop(context.Background(), in, &out, &errOut, func(ctx context.Context, q string) (string, error) {
		assert.Equal(t, "question with space", q)
		return "ok", nil
	})
	require.NoError(t, err)
}
