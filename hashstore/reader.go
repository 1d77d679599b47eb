package hashstore

import (
	"bufio"
	"context"
	"fmt"
)

const maxTokenSize = 1 << 20

// ReadCodes reads whitespace-separated decimal codes from src.
//
// Failing to open or read src yields an error wrapping ErrSourceUnavailable.
// A token that does not parse as H yields a *ParseError.
func ReadCodes[H Code](ctx context.Context, src Source) ([]H, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, src, err)
	}
	defer func() { _ = rc.Close() }()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxTokenSize)
	sc.Split(bufio.ScanWords)

	var codes []H
	for sc.Scan() {
		tok := sc.Text()
		c, err := ParseCode[H](tok)
		if err != nil {
			return nil, &ParseError{Offset: len(codes), Token: tok, cause: err}
		}
		codes = append(codes, c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, src, err)
	}

	return codes, nil
}
