// Command tutorplanet は講師のサインアップ・ログイン・閲覧を提供するWebアプリケーション。
//
// 使い方:
//
//	tutorplanet [serve|migrate|seed|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/tutorplanet/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "tutorplanet: %v\n", err)
		os.Exit(1)
	}
}
