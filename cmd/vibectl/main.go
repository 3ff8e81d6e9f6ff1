// Command vibectl is a smoke-check client for a running VibeCurator
// server.
package main

func main() {
	execute()
}
