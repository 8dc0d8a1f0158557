package main

// Flag structs to decouple cobra from logic for testing.

type ServeFlags struct {
	ConfigPath string
	Listen     string
}

type UserFlags struct {
	ConfigPath string
	Username   string
	Password   string
	Role       string
}
