// Package client is a typed HTTP client for the taskhub API.
//
// Collection reads go through a circuit breaker and never fail outright: a
// transport error, a non-2xx answer or an open breaker yields an empty
// collection plus a Notice the caller can show. Reports are then derived from
// the fetched collections in memory.
package client
