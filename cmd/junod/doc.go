/*
Junod is a full-node juno implementation written in Go.

The default options are sane for most users. This means junod will work 'out of
the box' for most users. However, there are also a wide variety of flags that
can be used to control it.

Usage:

	junod [OPTIONS]

For an up-to-date help message:

	junod --help

The long form of all option flags (except -C) can be specified in a
configuration file that is automatically parsed when junod starts up. By
default, the configuration file is located at ~/.junod/junod.conf on
POSIX-style operating systems and %LOCALAPPDATA%\junod\junod.conf on Windows.
The -C (--configfile) flag can be used to override this location.
*/
package main
