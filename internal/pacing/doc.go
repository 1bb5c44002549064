// Package pacing provides the cooperative pacing discipline used for every
// sequence of calls to the generation service: one element is released per
// pacing interval, with no delay before the first element and none after the last.
//
// Calls are issued strictly sequentially; pacing is the only throttle, so the
// iterator is the single place where inter-call delays are taken.
package pacing
