package repository

import "context"

// UnitOfWork scopes a sequence of repository calls to a single
// transaction. fn receives a context carrying that transaction;
// every ScheduleRepository/ReviewLogRepository call made with that
// context participates in it. Returning a non-nil error rolls back;
// returning nil commits.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
