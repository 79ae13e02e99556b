// Command hashpw prints the bcrypt hash for the admin password, for use as
// ADMIN_PASSWORD_HASH.
package main

import (
	"fmt"
	"os"

	"github.com/ccube-expense/ccube-expense/internal/auth"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(2)
	}
	hash, err := auth.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
