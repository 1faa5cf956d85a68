// SPDX-License-Identifier: MIT
package main

import gitffwd "github.com/ralismark/git-ffwd/cmd/git-ffwd"

var execute = gitffwd.Execute

func main() {
	execute()
}
