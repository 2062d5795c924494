package main

// Flag structs decouple cobra from the handlers so tests can call them directly.

type StartFlags struct {
	ConfigPath string
	Name       string
	Cmd        string
	WorkDir    string
	Port       int
	Marker     string
	LogDir     string
	EnvKVs     []string
	EnvFiles   []string
	HistoryDSN string
}

type StopFlags struct {
	ConfigPath string
	Name       string
	Marker     string
	HistoryDSN string
}

type StatusFlags struct {
	ConfigPath string
	Name       string
	Marker     string
	JSON       bool
}

type ServeFlags struct {
	ConfigPath string
	Listen     string
	BasePath   string
	HistoryDSN string
	LogFile    string
}

type InitFlags struct {
	Type   string
	Output string
	Force  bool
}
