// Package retry runs an operation with exponential backoff until it
// succeeds or the attempt budget runs out.
//
// The loop is deliberately small: a Config (attempts, delays, multiplier,
// jitter), Do for plain operations, DoWithResult for operations producing a
// value, and a NonRetryable marker for errors the caller knows will not
// heal; a conflict retry loop uses it to fail fast on caller mistakes
// while retrying revision races:
//
//	err := retry.Do(ctx, retry.Quick(), func() error {
//	    if err := store.CompareAndSwap(key, prev, next); err != nil {
//	        if errors.Is(err, ErrBadInput) {
//	            return retry.NonRetryable(err)
//	        }
//	        return err
//	    }
//	    return nil
//	})
//
// Presets: DefaultConfig for ordinary transient faults, Quick for startup
// races against dependencies that appear within seconds.
//
// Classification of which errors deserve a retry lives with the caller (the
// errors package bridges its classes into a Config); this package only
// schedules the attempts. Both the operation and the backoff sleep respect
// context cancellation, and everything here is safe for concurrent use.
package retry
