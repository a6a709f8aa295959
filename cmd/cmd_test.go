package cmd

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trueside/fantoken/config"
	lerrors "github.com/trueside/fantoken/errors"
	"github.com/trueside/fantoken/jsonx"
	"github.com/trueside/fantoken/logx"
	"github.com/trueside/fantoken/monitoring"
	"github.com/trueside/fantoken/service"
	"github.com/trueside/fantoken/store"
	"github.com/trueside/fantoken/types"
)

const (
	testAdmin = "ST1ADMIN00000000000000000000000000000000"
	testAlice = "ST2ALICE0000000000000000000000000000000"
	testBob   = "ST3BOB000000000000000000000000000000000"
)

func TestMain(m *testing.M) {
	logx.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func writeContractConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fantoken.yml")
	content := "config:\n  ledger:\n    admin: " + testAdmin + "\n  store:\n    type: leveldb\n    directory: " + filepath.Join(dir, "db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLILifecycle(t *testing.T) {
	cfgPath := writeContractConfig(t)

	out, err := run(t, cfgPath, "init")
	require.NoError(t, err)
	var status service.Status
	require.NoError(t, jsonx.Unmarshal([]byte(out), &status))
	assert.Equal(t, testAdmin, status.Admin.String())
	assert.Equal(t, "0", status.TotalSupply)

	_, err = run(t, cfgPath, "init")
	assert.Error(t, err, "init twice")

	out, err = run(t, cfgPath, "mint", "--caller", testAdmin, "--to", testAlice, "-a", "1_000")
	require.NoError(t, err)
	var res service.Result
	require.NoError(t, jsonx.Unmarshal([]byte(out), &res))
	assert.True(t, res.Value)
	assert.Equal(t, service.OpMint, res.Operation)

	_, err = run(t, cfgPath, "transfer", "--caller", testAlice, "--to", testBob, "-a", "250")
	require.NoError(t, err)
	_, err = run(t, cfgPath, "stake", "--caller", testAlice, "-a", "500")
	require.NoError(t, err)
	_, err = run(t, cfgPath, "unstake", "--caller", testAlice, "-a", "200")
	require.NoError(t, err)
	_, err = run(t, cfgPath, "burn", "--caller", testBob, "-a", "50")
	require.NoError(t, err)

	queries := []struct {
		args []string
		want string
	}{
		{[]string{"query", "balance", testAlice}, "450"},
		{[]string{"query", "staked", testAlice}, "300"},
		{[]string{"query", "balance", testBob}, "200"},
		{[]string{"query", "supply"}, "950"},
	}
	for _, q := range queries {
		out, err := run(t, cfgPath, q.args...)
		require.NoError(t, err, q.args)
		var got struct {
			Amount string `json:"amount"`
		}
		require.NoError(t, jsonx.Unmarshal([]byte(out), &got))
		assert.Equal(t, q.want, got.Amount, q.args)
	}

	_, err = run(t, cfgPath, "pause", "--caller", testAdmin, "--paused=true")
	require.NoError(t, err)
	out, err = run(t, cfgPath, "query", "status")
	require.NoError(t, err)
	require.NoError(t, jsonx.Unmarshal([]byte(out), &status))
	assert.True(t, status.Paused)
}

func TestCLIRejectionCarriesCode(t *testing.T) {
	cfgPath := writeContractConfig(t)
	_, err := run(t, cfgPath, "init")
	require.NoError(t, err)

	out, err := run(t, cfgPath, "transfer", "--caller", testAlice, "--to", testBob, "-a", "1")
	require.Error(t, err)
	assert.Equal(t, int(lerrors.ErrCodeInsufficientBalance), exitCode(err))

	var res service.Result
	require.NoError(t, jsonx.Unmarshal([]byte(out), &res))
	assert.False(t, res.Value)
	assert.Equal(t, lerrors.ErrCodeInsufficientBalance, res.Code)

	_, err = run(t, cfgPath, "mint", "--caller", testAlice, "--to", testAlice, "-a", "1")
	assert.Equal(t, int(lerrors.ErrCodeNotAuthorized), exitCode(err))
}

func TestCLIInputErrors(t *testing.T) {
	cfgPath := writeContractConfig(t)
	_, err := run(t, cfgPath, "init")
	require.NoError(t, err)

	_, err = run(t, cfgPath, "mint", "--caller", testAdmin, "--to", testAlice, "-a", "12abc")
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))

	_, err = run(t, cfgPath, "burn", "--caller", testAdmin)
	assert.Error(t, err, "missing amount")

	_, err = run(t, filepath.Join(t.TempDir(), "missing.yml"), "query", "supply")
	assert.Error(t, err)
}

func TestQueryBeforeInit(t *testing.T) {
	_, err := run(t, writeContractConfig(t), "query", "supply")
	assert.Error(t, err)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServeStopsOnCancel(t *testing.T) {
	ls, err := store.CreateStore(&store.StoreConfig{Type: store.MemoryStoreType})
	require.NoError(t, err)
	svc, err := service.InitLedger(ls, testAdmin)
	require.NoError(t, err)
	defer svc.Close()

	serverCfg := &config.ServerConfig{
		API:     config.APIConfig{ListenAddr: freeAddr(t)},
		Metrics: config.MetricsConfig{Enabled: false},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, svc, serverCfg)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func httpGet(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func waitListening(t *testing.T, addr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond, addr)
}

func TestServeAppliesOperationsFromClients(t *testing.T) {
	cfgPath := writeContractConfig(t)
	_, err := run(t, cfgPath, "init")
	require.NoError(t, err)

	contractCfg, err := config.LoadContractConfig(cfgPath)
	require.NoError(t, err)
	ls, err := store.CreateStore(&contractCfg.Store)
	require.NoError(t, err)
	svc, err := service.NewLedgerService(ls)
	require.NoError(t, err)

	monitoring.InitMetrics()
	serverCfg := &config.ServerConfig{
		API:     config.APIConfig{ListenAddr: freeAddr(t)},
		Ops:     config.OpsConfig{Enabled: true, ListenAddr: freeAddr(t)},
		Metrics: config.MetricsConfig{Enabled: true, ListenAddr: freeAddr(t)},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, svc, serverCfg)
	}()
	waitListening(t, serverCfg.API.ListenAddr)
	waitListening(t, serverCfg.Ops.ListenAddr)
	waitListening(t, serverCfg.Metrics.ListenAddr)

	ops := serverCfg.Ops.ListenAddr
	out, err := run(t, cfgPath, "mint", "--server", ops, "--caller", testAdmin, "--to", testAlice, "-a", "1_000")
	require.NoError(t, err)
	var res service.Result
	require.NoError(t, jsonx.Unmarshal([]byte(out), &res))
	assert.True(t, res.Value)

	_, err = run(t, cfgPath, "stake", "--server", "http://"+ops, "--caller", testAlice, "-a", "400")
	require.NoError(t, err)

	out, err = run(t, cfgPath, "transfer", "--server", ops, "--caller", testBob, "--to", testAlice, "-a", "1")
	require.Error(t, err)
	assert.Equal(t, int(lerrors.ErrCodeInsufficientBalance), exitCode(err))
	require.NoError(t, jsonx.Unmarshal([]byte(out), &res))
	assert.Equal(t, lerrors.ErrCodeInsufficientBalance, res.Code)

	_, err = run(t, cfgPath, "burn", "--server", ops, "--caller", testAlice, "-a", "12abc")
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))

	code, body := httpGet(t, "http://"+serverCfg.API.ListenAddr+"/accounts/"+testAlice)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"address":"`+testAlice+`","balance":"600","staked":"400"}`, string(body))

	code, body = httpGet(t, "http://"+serverCfg.API.ListenAddr+"/supply")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"amount":"1000"}`, string(body))

	_, body = httpGet(t, "http://"+serverCfg.Metrics.ListenAddr+"/metrics")
	assert.Contains(t, string(body), `fantoken_operation_count{operation="mint",result="ok"}`)
	assert.Contains(t, string(body), `fantoken_operation_count{operation="transfer",result="101"}`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
	svc.Close()

	out, err = run(t, cfgPath, "query", "staked", testAlice)
	require.NoError(t, err)
	assert.Contains(t, out, `"400"`)
}

func TestServerUnreachable(t *testing.T) {
	cfgPath := writeContractConfig(t)
	_, err := run(t, cfgPath, "pause", "--server", freeAddr(t), "--caller", testAdmin)
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}

func TestLogEventsWritesAppliedOperations(t *testing.T) {
	var buf bytes.Buffer
	logx.SetOutput(&buf)
	defer logx.SetOutput(io.Discard)

	bus := types.NewEventBus()
	events := bus.Subscribe(types.AllAddresses)

	done := make(chan struct{})
	go func() {
		defer close(done)
		logEvents(context.Background(), events)
	}()

	bus.Publish(&types.LedgerEvent{OpID: "op-1", Operation: service.OpMint, Caller: testAdmin, Recipient: testAlice, Amount: uint256.NewInt(42)})
	bus.Publish(&types.LedgerEvent{OpID: "op-2", Operation: service.OpSetPaused, Caller: testAdmin, Paused: true})
	bus.Unsubscribe(types.AllAddresses, events)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("logEvents did not return after the channel closed")
	}
	logged := buf.String()
	assert.Contains(t, logged, "op=mint id=op-1 caller="+testAdmin+" to="+testAlice+" amount=42")
	assert.Contains(t, logged, "op=set_paused id=op-2 caller="+testAdmin+" paused=true")
}
