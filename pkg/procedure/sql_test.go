package procedure_test

import (
	"testing"

	"github.com/LWENA27/sms-getway/pkg/procedure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatement_Postgres(t *testing.T) {
	params := procedure.Params{
		{Name: "p_api_key", Value: "key"},
		{Name: "p_phone_numbers", Value: []string{"+1", "+2"}},
		{Name: "p_metadata", Value: map[string]any{}},
	}

	t.Run("schema qualified", func(t *testing.T) {
		query, args, err := procedure.Statement("postgres", "sms_gateway", "submit_bulk_sms_request", params)

		require.NoError(t, err)
		assert.Equal(t,
			`SELECT ("sms_gateway"."submit_bulk_sms_request"(p_api_key => $1, p_phone_numbers => $2, p_metadata => $3))::text`,
			query)
		require.Len(t, args, 3)
		assert.Equal(t, []string{"+1", "+2"}, args[1])
	})

	t.Run("default namespace", func(t *testing.T) {
		query, _, err := procedure.Statement("postgres", procedure.DefaultTarget, "get_sms_request_status",
			procedure.Params{{Name: "p_request_id", Value: "id"}})

		require.NoError(t, err)
		assert.Equal(t, `SELECT ("get_sms_request_status"(p_request_id => $1))::text`, query)
	})

	t.Run("identifiers are quoted", func(t *testing.T) {
		query, _, err := procedure.Statement("postgres", `evil"schema`, "fn", nil)

		require.NoError(t, err)
		assert.Equal(t, `SELECT ("evil""schema"."fn"())::text`, query)
	})

	t.Run("parameter names are validated", func(t *testing.T) {
		_, _, err := procedure.Statement("postgres", procedure.DefaultTarget, "fn",
			procedure.Params{{Name: "p_x => 1); DROP TABLE x; --", Value: 1}})

		assert.Error(t, err)
	})
}

func TestStatement_MySQL(t *testing.T) {
	params := procedure.Params{
		{Name: "p_api_key", Value: "key"},
		{Name: "p_phone_numbers", Value: []string{"+1", "+2"}},
		{Name: "p_external_id", Value: nil},
		{Name: "p_priority", Value: 3},
		{Name: "p_metadata", Value: map[string]any{"campaign": "may"}},
	}

	query, args, err := procedure.Statement("mysql", "sms_gateway", "submit_bulk_sms_request", params)

	require.NoError(t, err)
	assert.Equal(t, "SELECT CAST(`sms_gateway`.`submit_bulk_sms_request`(?, ?, ?, ?, ?) AS CHAR)", query)
	assert.Equal(t, []any{"key", `["+1","+2"]`, nil, 3, `{"campaign":"may"}`}, args)
}

func TestStatement_UnsupportedDialect(t *testing.T) {
	_, _, err := procedure.Statement("sqlite", procedure.DefaultTarget, "fn", nil)

	assert.Error(t, err)
}
