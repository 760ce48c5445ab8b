// Package retry drives a fallible operation through repeated attempts.
//
// A Session owns one operation, a policy.BackoffPolicy and a retry limit. It invokes the
// operation, waits out the policy delay after every non-final failure and finishes in exactly
// one terminal state: Succeeded, Exhausted or Cancelled. Attempts of a single session are
// strictly sequential; independent sessions share no mutable state and may run concurrently.
//
// The owner of a session must cancel it when it is no longer interested in the outcome:
//
//	s, err := retry.Start(ctx, op, p, 3)
//	if err != nil {
//	    return err
//	}
//	defer s.Cancel()
//	outcome, err := s.Wait(ctx)
//
// Do wraps this pattern and maps the outcome to a value and an error.
package retry
