// SPDX-License-Identifier: EPL-2.0

// Command otodecks plays, mixes and renders tracks on two or more decks.
package main

func main() {
	Execute()
}
