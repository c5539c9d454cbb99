package paste

// SizePolicy enforces the per-kind upload ceilings. Content exactly at the
// ceiling is accepted; one byte over is rejected.
type SizePolicy struct {
	MaxTextBytes int
	MaxLinkBytes int
}

// Check validates a content length against the ceiling for its kind.
func (p SizePolicy) Check(kind Kind, size int) error {
	limit := p.MaxTextBytes
	if kind == KindLink {
		limit = p.MaxLinkBytes
	}

	if size > limit {
		return ErrTooLarge
	}

	return nil
}
