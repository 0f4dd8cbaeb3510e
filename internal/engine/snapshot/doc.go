// Package snapshot serializes the item sequence of an index and restores it.
//
// A snapshot is a single msgpack frame:
//
//	{version, block_capacity, count, checksum, payload}
//
// The payload is a msgpack array of the items and the checksum is the
// xxhash64 of the payload bytes. Decoding rejects unknown versions, checksum
// mismatches and payloads whose length disagrees with count.
package snapshot
