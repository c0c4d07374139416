package address

import "context"

// QueryClient broadcasts an abbreviation query to the relay service and
// returns the set of full addresses claiming it.
type QueryClient interface {
	QueryAbbreviation(ctx context.Context, suffix string) ([]string, error)
}

// Directory resolves abbreviated relay addresses to full ones.
type Directory struct {
	qc QueryClient
}

func NewDirectory(qc QueryClient) *Directory {
	return &Directory{qc: qc}
}

// Resolve maps a 6-code suffix to the single full address claiming it. The
// format check happens before any network call. Collisions cannot be
// disambiguated automatically and fail with ErrConflict.
func (d *Directory) Resolve(ctx context.Context, suffix string) (string, error) {
	if !ValidAbbreviation(suffix) {
		return "", ErrInvalidFormat
	}

	addrs, err := d.qc.QueryAbbreviation(ctx, suffix)
	if err != nil {
		return "", err
	}

	switch len(addrs) {
	case 0:
		return "", ErrNotFound
	case 1:
		return addrs[0], nil
	default:
		return "", ErrConflict
	}
}
