// Command needle-invoke computes canonical invoker names and identities from
// a manifest of indexed classes, beans and invoker configurations.
package main

func main() {
	Execute()
}
