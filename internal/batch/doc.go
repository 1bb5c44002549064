// Package batch splits an oversized metadata request into ordered sub-requests
// and joins their results. Requests above MaxSize entries are known to silently
// drop trailing entries, so the 22-card Major Arcana is requested in two halves
// while each 14-card suit fits in a single request.
package batch
