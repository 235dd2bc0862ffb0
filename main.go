/*
Copyright © 2026 JACOB ARTHURS
*/
package main

import "github.com/jacobarthurs/accelplan/cmd"

func main() {
	cmd.Execute()
}
