// Gradledeps reports where dependencies are declared in Gradle build scripts.
package main

import "github.com/albertocavalcante/gradledeps/cmd/gradledeps/internal/cli"

func main() {
	cli.Execute()
}
