/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/kev405/toolflow-backend/cmd"

func main() {
	cmd.Execute()
}
