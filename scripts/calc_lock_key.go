package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// calc_lock_key.go - Utility to calculate the advisory lock key for a group
//
// Clustering rebuilds hold a Postgres advisory lock per group. When a
// crashed run leaves a lock behind, this prints the bigint key so it
// can be released by hand:
//
//   SELECT pg_advisory_unlock(<key>);
//
// Usage:
//   go run scripts/calc_lock_key.go <group_uuid>

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run calc_lock_key.go <group_uuid>")
		os.Exit(1)
	}

	groupID, err := uuid.Parse(os.Args[1])
	if err != nil {
		fmt.Printf("invalid group id: %v\n", err)
		os.Exit(1)
	}

	hi := binary.BigEndian.Uint64(groupID[:8])
	lo := binary.BigEndian.Uint64(groupID[8:])
	key := int64(hi ^ lo)

	fmt.Printf("Group:    %s\n", groupID)
	fmt.Printf("Lock key: %d\n", key)
}
