package redact_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/coder/secretcrypt/redact"
	"github.com/coder/secretcrypt/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, testutil.GoleakOptions...)
}

func TestRecord(t *testing.T) {
	t.Parallel()

	t.Run("MasksAndDoesNotMutate", func(t *testing.T) {
		t.Parallel()
		in := map[string]any{"api_key": "sk-123", "name": "openai"}
		out := redact.Record(in, redact.KeySet{})
		require.Equal(t, map[string]any{"api_key": redact.Mask, "name": "openai"}, out)
		require.Equal(t, map[string]any{"api_key": "sk-123", "name": "openai"}, in)

		out["name"] = "changed"
		require.Equal(t, "openai", in["name"], "output must not alias the input")
	})

	t.Run("InputUnchangedAfterManyPasses", func(t *testing.T) {
		t.Parallel()
		in := map[string]any{
			"name":              "bedrock",
			"base_url":          "https://bedrock.example.com",
			"access_key_id":     "AKIAEXAMPLE",
			"secret_access_key": "wJalrXUtnFEMI",
			"nested":            map[string]any{"api_key": "sk-1"},
		}
		want := map[string]any{
			"name":              "bedrock",
			"base_url":          "https://bedrock.example.com",
			"access_key_id":     "AKIAEXAMPLE",
			"secret_access_key": "wJalrXUtnFEMI",
			"nested":            map[string]any{"api_key": "sk-1"},
		}
		for range 3 {
			_ = redact.Record(in, redact.DefaultKeys)
			_ = redact.Record(in, redact.NewKeySet("name"))
		}
		if diff := cmp.Diff(want, in); diff != "" {
			t.Fatalf("input mutated (-want +got):\n%s", diff)
		}
	})

	t.Run("EmptyValuesUntouched", func(t *testing.T) {
		t.Parallel()
		var nilStr *string
		empty := ""
		in := map[string]any{
			"api_key":           "",
			"password":          nil,
			"secret":            nilStr,
			"access_key_id":     &empty,
			"secret_access_key": []byte{},
		}
		require.Equal(t, in, redact.Record(in, redact.DefaultKeys))
	})

	t.Run("NonStringValues", func(t *testing.T) {
		t.Parallel()
		key := "AKIA"
		in := map[string]any{
			"secret":        42,
			"password":      []byte("hunter2"),
			"access_key_id": &key,
			"port":          5432,
		}
		out := redact.Record(in, redact.DefaultKeys)
		require.Equal(t, redact.Mask, out["secret"])
		require.Equal(t, redact.Mask, out["password"])
		require.Equal(t, redact.Mask, out["access_key_id"])
		require.Equal(t, 5432, out["port"])
	})

	t.Run("NameVariants", func(t *testing.T) {
		t.Parallel()
		in := map[string]any{
			"apiKey":          "a",
			"API Key":         "b",
			"api-key":         "c",
			"SecretAccessKey": "d",
			"AccessKeyID":     "e",
			"PASSWORD":        "f",
			"model":           "gpt",
		}
		out := redact.Record(in, redact.KeySet{})
		for k, v := range out {
			if k == "model" {
				require.Equal(t, "gpt", v)
				continue
			}
			require.Equal(t, redact.Mask, v, "field %q", k)
		}
	})

	t.Run("CustomKeys", func(t *testing.T) {
		t.Parallel()
		keys := redact.DefaultKeys.Union(redact.NewKeySet("deployment_token"))
		in := map[string]any{"deployment_token": "t", "api_key": "k", "region": "us-east-1"}
		out := redact.Record(in, keys)
		require.Equal(t, redact.Mask, out["deployment_token"])
		require.Equal(t, redact.Mask, out["api_key"])
		require.Equal(t, "us-east-1", out["region"])

		// The default set is unaffected by the union.
		require.False(t, redact.DefaultKeys.Has("deployment_token"))
	})

	t.Run("AlternateKeysReplaceDefaults", func(t *testing.T) {
		t.Parallel()
		in := map[string]any{"api_key": "k", "token": "t"}
		out := redact.Record(in, redact.NewKeySet("token"))
		require.Equal(t, "k", out["api_key"])
		require.Equal(t, redact.Mask, out["token"])
	})

	t.Run("Nil", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, redact.Record(nil, redact.DefaultKeys))
	})
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"api_key":         "api_key",
		"apiKey":          "api_key",
		"APIKey":          "api_key",
		"API Key":         "api_key",
		"  api--key  ":    "api_key",
		"AccessKeyID":     "access_key_id",
		"secretAccessKey": "secret_access_key",
		"s3Bucket":        "s3_bucket",
		"_leading":        "leading",
		"":                "",
	} {
		require.Equal(t, want, redact.Normalize(in), "Normalize(%q)", in)
	}
}

func TestKeySet(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"access_key_id", "api_key", "password", "secret", "secret_access_key"}, redact.DefaultKeys.Names())
	require.Equal(t, 5, redact.DefaultKeys.Len())
	require.True(t, redact.DefaultKeys.Has("Api Key"))
	require.False(t, redact.DefaultKeys.Has("name"))
	require.Zero(t, redact.KeySet{}.Len())
	require.False(t, redact.KeySet{}.Has("api_key"))
}

func TestFields(t *testing.T) {
	t.Parallel()

	fields := redact.Fields(map[string]any{"name": "openai", "api_key": "sk-123"}, redact.KeySet{})
	require.Len(t, fields, 2)
	require.Equal(t, "api_key", fields[0].Name)
	require.Equal(t, redact.Mask, fields[0].Value)
	require.Equal(t, "name", fields[1].Name)
	require.Equal(t, "openai", fields[1].Value)
}
