package service

import "context"

// ReapOnce runs a single idle sweep.
func (s *Service) ReapOnce(ctx context.Context) { s.reapOnce(ctx) }
