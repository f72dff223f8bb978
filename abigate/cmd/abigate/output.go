package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/NilFoundation/abigate/abigate/internal/abi"
	"github.com/fatih/color"
)

var (
	keyColor        = color.New(color.FgCyan)
	signatureColor  = color.New(color.Bold)
	mutabilityColor = color.New(color.FgYellow)
)

func makeKey(key string) string {
	return keyColor.Sprintf("%-10s", key+":")
}

func processResolve(ctx context.Context, cfg *config) error {
	service, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer service.Close()

	desc, err := service.ResolveAbi(ctx, cfg.address)
	if err != nil {
		return err
	}

	fmt.Printf("%s%s\n", makeKey("Contract"), color.MagentaString(cfg.address.Hex()))
	for _, m := range desc.Functions() {
		fmt.Printf("  %s %s", signatureColor.Sprint(m.Signature()), mutabilityColor.Sprint(m.Mutability))
		if len(m.Outputs) > 0 {
			fmt.Printf(" -> %s", formatParams(m.Outputs))
		}
		fmt.Println()
	}
	return nil
}

func processCall(ctx context.Context, cfg *config) error {
	service, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer service.Close()

	args := make([]any, len(cfg.args))
	for i, a := range cfg.args {
		args[i] = a
	}

	member, res, err := service.CallFunction(ctx, cfg.address, cfg.function, args, !cfg.raw)
	if err != nil {
		return err
	}

	result := res.Raw
	if res.Decoded {
		result = res.Value
	}
	fmt.Printf("%s%s\n", makeKey("Contract"), color.MagentaString(cfg.address.Hex()))
	fmt.Printf("%s%s\n", makeKey("Function"), signatureColor.Sprint(member.Signature()))
	fmt.Printf("%s%s\n", makeKey("Result"), color.GreenString("%v", formatValue(result)))
	return nil
}

func formatParams(params []abi.Param) string {
	types := make([]string, len(params))
	for i, p := range params {
		types[i] = p.Type
	}
	return "(" + strings.Join(types, ",") + ")"
}

func formatValue(v any) string {
	if values, ok := v.([]any); ok {
		parts := make([]string, len(values))
		for i, e := range values {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	if b, ok := v.([]byte); ok {
		return fmt.Sprintf("0x%x", b)
	}
	return fmt.Sprint(v)
}
