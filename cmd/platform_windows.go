package cmd

import _ "github.com/mj1618/winwatch/internal/platform/win32"
