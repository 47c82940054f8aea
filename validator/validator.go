package validator

import (
	"reflect"
	"sync"

	"github.com/NethermindEth/ethcall/contract"
	"github.com/NethermindEth/ethcall/utils"
	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

// Custom validation function for network names
func validateNetwork(fl validator.FieldLevel) bool {
	name, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := utils.ResolveRPCURL(name)
	return err == nil
}

// validateABIName accepts embedded ABI names only; file paths are checked when opened.
func validateABIName(fl validator.FieldLevel) bool {
	name, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := contract.Embedded(name)
	return err == nil
}

// Validator returns a singleton that can be used to validate various objects
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()

		if err := v.RegisterValidation("network", validateNetwork); err != nil {
			panic("failed to register validation: " + err.Error())
		}

		if err := v.RegisterValidation("abi_name", validateABIName); err != nil {
			panic("failed to register validation: " + err.Error())
		}

		// Register these types to use their string representation for validation
		// purposes
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			switch n := field.Interface().(type) {
			case utils.Network:
				if n == 0 {
					return ""
				}
				return n.String()
			case *utils.Network:
				if n == nil || *n == 0 {
					return ""
				}
				return n.String()
			}
			panic("not a utils.Network")
		}, utils.Network(0), (*utils.Network)(nil))
	})
	return v
}
