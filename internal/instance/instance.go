// Package instance reads and writes knapsack instances in the line-oriented
// text format:
//
//	<item count> <capacity>
//	<value> <weight>
//	...
//
// The declared item count is informational; the items that follow are used as
// given. Blank lines are ignored.
package instance

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/eugenenazirov/knapsack-solver/internal/knapsack"
)

// maxPreallocItems caps the capacity reserved from an untrusted header.
const maxPreallocItems = 1 << 16

// ErrMalformedInstance is returned when the text does not follow the instance format.
var ErrMalformedInstance = errors.New("malformed instance")

// Parse reads an instance from r.
func Parse(r io.Reader) (knapsack.Problem, error) {
	scanner := bufio.NewScanner(r)

	var (
		problem    knapsack.Problem
		headerSeen bool
		lineNo     int
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		first, second, err := parsePair(line)
		if err != nil {
			return knapsack.Problem{}, fmt.Errorf("%w: line %d: %v", ErrMalformedInstance, lineNo, err)
		}

		if !headerSeen {
			if first < 0 {
				return knapsack.Problem{}, fmt.Errorf("%w: line %d: negative item count %d", ErrMalformedInstance, lineNo, first)
			}
			problem.Capacity = second
			problem.Items = make([]knapsack.Item, 0, min(first, maxPreallocItems))
			headerSeen = true
			continue
		}
		problem.Items = append(problem.Items, knapsack.Item{Value: first, Weight: second})
	}
	if err := scanner.Err(); err != nil {
		return knapsack.Problem{}, fmt.Errorf("read instance: %w", err)
	}
	if !headerSeen {
		return knapsack.Problem{}, fmt.Errorf("%w: missing header line", ErrMalformedInstance)
	}

	return problem, nil
}

// ParseFile reads an instance from the file at path.
func ParseFile(path string) (knapsack.Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return knapsack.Problem{}, fmt.Errorf("open instance: %w", err)
	}
	defer f.Close()

	problem, err := Parse(f)
	if err != nil {
		return knapsack.Problem{}, fmt.Errorf("%s: %w", path, err)
	}
	return problem, nil
}

// Write emits problem in the format accepted by Parse.
func Write(w io.Writer, problem knapsack.Problem) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", len(problem.Items), problem.Capacity); err != nil {
		return err
	}
	for _, item := range problem.Items {
		if _, err := fmt.Fprintf(bw, "%d %d\n", item.Value, item.Weight); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func parsePair(line string) (int, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected 2 integers, got %d fields", len(fields))
	}
	first, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid integer %q", fields[0])
	}
	second, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid integer %q", fields[1])
	}
	return first, second, nil
}
