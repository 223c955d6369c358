package system

// EnvStdioLog names a file that receives stdout and stderr, like --stdio-log.
const EnvStdioLog = "WANDERSPECTRUM_STDIO_LOG"
