// Command lumina is the operator CLI for the Lumina watch worker. It manages
// configuration, inspects the state store, toggles project watches, and can
// run a single watch cycle on demand.
package main
