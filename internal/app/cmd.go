package app

import (
	"fmt"
	"io"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe は講師サイトのWebサーバーを起動する。
	CommandServe Command = "serve"
	// CommandMigrate は講師テーブルのマイグレーションを実行する。
	CommandMigrate Command = "migrate"
	// CommandSeed は講師テーブルを初期化し、John DoeとJane Smithを投入する。
	CommandSeed Command = "seed"
	// CommandHealthcheck は起動中サーバーの/healthを叩く。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
	// CommandHelp は使い方を表示して終了する。
	CommandHelp Command = "help"
)

var commandSummaries = []struct {
	cmd     Command
	summary string
}{
	{CommandServe, "start the Tutor Planet web server (default)"},
	{CommandMigrate, "apply the tutors schema migrations"},
	{CommandSeed, "reset the tutors table and insert the sample tutors"},
	{CommandHealthcheck, "check that a running server answers /health"},
	{CommandHelp, "show this message"},
}

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "migrate":
		return CommandMigrate
	case "seed":
		return CommandSeed
	case "healthcheck":
		return CommandHealthcheck
	case "help", "-h", "--help":
		return CommandHelp
	default:
		return CommandServe
	}
}

// WriteUsage はサブコマンドの一覧と主要な環境変数をwに書き出す。
func WriteUsage(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "usage: tutorplanet [command]\n\ncommands:"); err != nil {
		return err
	}
	for _, c := range commandSummaries {
		if _, err := fmt.Fprintf(w, "  %-12s %s\n", c.cmd, c.summary); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "\nrequired environment: DATABASE_URL, SESSION_SECRET")
	return err
}
