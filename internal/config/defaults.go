package config

import "github.com/spf13/viper"

// setDefaults seeds v with the matching engine's default tunables so
// that a --conf file only needs to override the constants it actually
// wants to change.
func setDefaults(v *viper.Viper) {
	v.SetDefault("min_tradable_amount", "10000")
	v.SetDefault("fee_token_price", "1000000000000000000")
	v.SetDefault("max_nr_exec_orders", 30)
	v.SetDefault("min_average_order_fee", "0")
	v.SetDefault("min_absolute_order_fee", "0")
	v.SetDefault("min_tradable_amount_rounding_tol", "0.001")
	v.SetDefault("max_rounding_volume", "100000000000")
	v.SetDefault("price_estimation_error", 10)
}
