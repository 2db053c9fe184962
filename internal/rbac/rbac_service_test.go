package rbac

import (
	"errors"
	"testing"

	"go-offboarding/internal/domain"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/stretchr/testify/assert"
)

type mockRepo struct {
	rolesErr error
}

func (m *mockRepo) GetEmployeeRoles(companyID string) ([]EmployeeRoleRow, error) {
	if m.rolesErr != nil {
		return nil, m.rolesErr
	}
	return []EmployeeRoleRow{
		{EmployeeID: "emp-hr", RoleID: "role-hr"},
		{EmployeeID: "emp-fin", RoleID: "role-finance"},
	}, nil
}

func (m *mockRepo) GetRolePermissions(companyID string) ([]RolePermissionRow, error) {
	return []RolePermissionRow{
		{RoleID: "role-hr", Resource: domain.ResourceSeparation, Action: domain.ActionApprove},
		{RoleID: "role-hr", Resource: domain.ResourceSettlement, Action: domain.ActionVerify},
		{RoleID: "role-finance", Resource: domain.ResourceSettlement, Action: domain.ActionPay},
	}, nil
}

func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	modelText := `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub, r.dom) && r.dom == p.dom && r.obj == p.obj && r.act == p.act
`

	m, err := model.NewModelFromString(modelText)
	assert.NoError(t, err)

	e, err := casbin.NewEnforcer(m)
	assert.NoError(t, err)

	return e
}

func TestRBACService_Enforce(t *testing.T) {
	service := NewService(&mockRepo{}, newTestEnforcer(t))

	err := service.LoadCompanyPolicy("company-1")
	assert.NoError(t, err)

	t.Run("hr can approve separation", func(t *testing.T) {
		allowed, err := service.Enforce(domain.EnforceRequest{
			EmployeeID: "emp-hr",
			CompanyID:  "company-1",
			Resource:   domain.ResourceSeparation,
			Action:     domain.ActionApprove,
		})
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("hr cannot mark settlement paid", func(t *testing.T) {
		allowed, err := service.Enforce(domain.EnforceRequest{
			EmployeeID: "emp-hr",
			CompanyID:  "company-1",
			Resource:   domain.ResourceSettlement,
			Action:     domain.ActionPay,
		})
		assert.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("finance can mark settlement paid", func(t *testing.T) {
		allowed, err := service.Enforce(domain.EnforceRequest{
			EmployeeID: "emp-fin",
			CompanyID:  "company-1",
			Resource:   domain.ResourceSettlement,
			Action:     domain.ActionPay,
		})
		assert.NoError(t, err)
		assert.True(t, allowed)
	})
}

func TestRBACService_EnforceRepoError(t *testing.T) {
	service := NewService(&mockRepo{rolesErr: errors.New("db down")}, newTestEnforcer(t))

	allowed, err := service.Enforce(domain.EnforceRequest{
		EmployeeID: "emp-hr",
		CompanyID:  "company-1",
		Resource:   domain.ResourceSeparation,
		Action:     domain.ActionRead,
	})

	assert.Error(t, err)
	assert.False(t, allowed)
}
