package commandmanager

// localeEnv pins command output to the C locale so it can be parsed.
var localeEnv = []string{"LANG=C", "LC_ALL=C", "LC_MESSAGES=C", "LC_CTYPE=C"}

// commandLine builds the argv for config: the locale and extra environment
// are applied through env(1) so they survive sudo's env_reset and reach
// remote shells that do not AcceptEnv.
func commandLine(config CommandConfig) []string {
	argv := make([]string, 0, len(localeEnv)+len(config.Env)+len(config.Args)+6)
	if config.Sudo {
		argv = append(argv, "sudo", "-S", "-p", "")
	}
	argv = append(argv, "env")
	argv = append(argv, localeEnv...)
	argv = append(argv, config.Env...)
	argv = append(argv, config.Command)
	return append(argv, config.Args...)
}
